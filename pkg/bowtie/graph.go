package bowtie

import (
	"fmt"
)

func (bt *BowTie) buildGraph() {
	bt.parents = make(map[string][]string, len(bt.nodes))
	bt.children = make(map[string][]string, len(bt.nodes))
	for _, n := range bt.nodes {
		bt.parents[n.Name] = n.Parents
		for _, p := range n.Parents {
			bt.children[p] = append(bt.children[p], n.Name)
		}
	}
}

// Parents returns the direct predecessors of name in the dependency graph.
func (bt *BowTie) Parents(name string) []string {
	return copyNames(bt.parents[name])
}

// Children returns the nodes whose expressions read name.
func (bt *BowTie) Children(name string) []string {
	return copyNames(bt.children[name])
}

// BowtieParents returns the direct predecessors of name that are diagram
// members. Latent inputs such as barrier conditions are skipped.
func (bt *BowTie) BowtieParents(name string) []string {
	var out []string
	for _, p := range bt.parents[name] {
		if bt.IsBowtieNode(p) {
			out = append(out, p)
		}
	}
	return out
}

// Edges lists every dependency edge as (parent, child) in declaration order.
func (bt *BowTie) Edges() [][2]string {
	var out [][2]string
	for _, n := range bt.nodes {
		for _, p := range n.Parents {
			out = append(out, [2]string{p, n.Name})
		}
	}
	return out
}

// TopologicalOrder returns node names so that every parent precedes its children.
func (bt *BowTie) TopologicalOrder() []string {
	return copyNames(bt.order)
}

// topologicalSort orders nodes with Kahn's algorithm. Ties keep declaration order.
func (bt *BowTie) topologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(bt.nodes))
	for _, n := range bt.nodes {
		inDegree[n.Name] = len(n.Parents)
	}

	queue := make([]string, 0)
	for _, n := range bt.nodes {
		if inDegree[n.Name] == 0 {
			queue = append(queue, n.Name)
		}
	}

	sorted := make([]string, 0, len(bt.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		for _, child := range bt.children[current] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(sorted) != len(bt.nodes) {
		return nil, fmt.Errorf("%w: sorted %d of %d nodes", ErrCycle, len(sorted), len(bt.nodes))
	}
	return sorted, nil
}
