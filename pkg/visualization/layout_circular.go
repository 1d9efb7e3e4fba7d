package visualization

import (
	"math"
	"sort"
)

// CircularLayout puts the nodes on a ring. Nodes are taken in column order
// starting from the left of the ring, so causes sit on the left and run over
// the top towards the top event and consequences.
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout returns a ring layout; zero padding becomes 50.
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

func (cl *CircularLayout) ComputeLayout(d *Diagram) (map[string]Position, error) {
	positions := make(map[string]Position, len(d.Nodes))
	cx, cy := cl.config.Width/2, cl.config.Height/2
	if len(d.Nodes) == 1 {
		positions[d.Nodes[0].ID] = Position{X: cx, Y: cy}
	}
	if len(d.Nodes) < 2 {
		return positions, nil
	}

	cols := Columns(d)
	ids := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		ids[i] = n.ID
	}
	sort.SliceStable(ids, func(i, j int) bool { return cols[ids[i]] < cols[ids[j]] })

	radius := math.Min(cx, cy) - cl.config.Padding
	for i, id := range ids {
		theta := math.Pi + 2*math.Pi*float64(i)/float64(len(ids))
		positions[id] = Position{
			X: cx + radius*math.Cos(theta),
			Y: cy + radius*math.Sin(theta),
		}
	}
	return positions, nil
}
