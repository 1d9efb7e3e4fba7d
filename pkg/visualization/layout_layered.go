package visualization

// LayeredLayout puts each node in the column given by its longest path from
// a source, so causes sit left of barriers, the top event and consequences.
type LayeredLayout struct {
	config *LayoutConfig
}

// NewLayeredLayout creates a new layered layout
func NewLayeredLayout(config *LayoutConfig) *LayeredLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &LayeredLayout{config: config}
}

// ComputeLayout assigns columns left to right and spreads each column vertically.
func (ll *LayeredLayout) ComputeLayout(d *Diagram) (map[string]Position, error) {
	positions := make(map[string]Position)
	if len(d.Nodes) == 0 {
		return positions, nil
	}

	columns := Columns(d)

	maxCol := 0
	for _, c := range columns {
		if c > maxCol {
			maxCol = c
		}
	}
	levels := make([][]string, maxCol+1)
	for _, n := range d.Nodes {
		c := columns[n.ID]
		levels[c] = append(levels[c], n.ID)
	}

	colWidth := (ll.config.Width - 2*ll.config.Padding) / float64(len(levels))
	for colIdx, level := range levels {
		x := ll.config.Padding + float64(colIdx)*colWidth + colWidth/2
		spacing := (ll.config.Height - 2*ll.config.Padding) / float64(len(level)+1)

		for rowIdx, id := range level {
			positions[id] = Position{X: x, Y: ll.config.Padding + spacing*float64(rowIdx+1)}
		}
	}

	return positions, nil
}

// Columns returns the longest-path depth of every node. Nodes on a cycle,
// which a pruned diagram should not have, stay in the column reached when
// the walk gave up on them.
func Columns(d *Diagram) map[string]int {
	inDegree := make(map[string]int, len(d.Nodes))
	children := make(map[string][]string, len(d.Nodes))
	for _, n := range d.Nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range d.Edges {
		if _, ok := inDegree[e.From]; !ok {
			continue
		}
		if _, ok := inDegree[e.To]; !ok {
			continue
		}
		inDegree[e.To]++
		children[e.From] = append(children[e.From], e.To)
	}

	columns := make(map[string]int, len(d.Nodes))
	queue := make([]string, 0)
	for _, n := range d.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if columns[current]+1 > columns[child] {
				columns[child] = columns[current] + 1
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return columns
}
