// Package bowtie models Bayesian bow-tie risk diagrams: random variables and
// threshold gates tagged as causes, barriers, a top event and consequences.
//
// A BowTie is assembled with a Builder and is read-only once built, so it can
// be shared by the sampler, the analysis and the renderer.
package bowtie

// BowTie is a built, immutable bow-tie model.
type BowTie struct {
	name    string
	context string
	nodes   []Node
	index   map[string]int

	topEvent string
	causes   []string
	conseq   []string
	prevent  []string
	mitigate []string
	escalate []string

	parents  map[string][]string
	children map[string][]string
	order    []string
}

// Name returns the model name.
func (bt *BowTie) Name() string { return bt.name }

// ContextLabel returns the label-only context, possibly empty.
func (bt *BowTie) ContextLabel() string { return bt.context }

// TopEventName returns the top event node.
func (bt *BowTie) TopEventName() string { return bt.topEvent }

// Causes returns the cause nodes in declaration order.
func (bt *BowTie) Causes() []string { return copyNames(bt.causes) }

// Consequences returns the consequence nodes in declaration order.
func (bt *BowTie) Consequences() []string { return copyNames(bt.conseq) }

// PreventativeBarriers returns the barriers left of the top event.
func (bt *BowTie) PreventativeBarriers() []string { return copyNames(bt.prevent) }

// MitigationBarriers returns the barriers right of the top event.
func (bt *BowTie) MitigationBarriers() []string { return copyNames(bt.mitigate) }

// EscalatoryFactors returns the factors that can weaken a barrier.
func (bt *BowTie) EscalatoryFactors() []string { return copyNames(bt.escalate) }

// AllBarriers returns preventative barriers followed by mitigation barriers.
func (bt *BowTie) AllBarriers() []string {
	out := make([]string, 0, len(bt.prevent)+len(bt.mitigate))
	out = append(out, bt.prevent...)
	return append(out, bt.mitigate...)
}

// FinalNodes returns the consequences followed by the top event.
func (bt *BowTie) FinalNodes() []string {
	out := make([]string, 0, len(bt.conseq)+1)
	out = append(out, bt.conseq...)
	return append(out, bt.topEvent)
}

// AllBowtieNodes returns every name that belongs on the diagram: barriers,
// top event, context, causes, escalatory factors and consequences. The context
// is a label, not a node, and is left out when unset.
func (bt *BowTie) AllBowtieNodes() []string {
	out := bt.AllBarriers()
	out = append(out, bt.topEvent)
	if bt.context != "" {
		out = append(out, bt.context)
	}
	out = append(out, bt.causes...)
	out = append(out, bt.escalate...)
	return append(out, bt.conseq...)
}

// IsBowtieNode reports whether name is a diagram member.
func (bt *BowTie) IsBowtieNode(name string) bool {
	if name == "" {
		return false
	}
	if name == bt.context {
		return true
	}
	n, ok := bt.Node(name)
	return ok && n.Role != RoleLatent
}

// Nodes returns all nodes in declaration order.
func (bt *BowTie) Nodes() []Node {
	out := make([]Node, len(bt.nodes))
	for i, n := range bt.nodes {
		out[i] = n.clone()
	}
	return out
}

// Node looks up a node by name.
func (bt *BowTie) Node(name string) (Node, bool) {
	i, ok := bt.index[name]
	if !ok {
		return Node{}, false
	}
	return bt.nodes[i].clone(), true
}

// Len is the number of declared nodes.
func (bt *BowTie) Len() int { return len(bt.nodes) }

// RoleOf returns the role of name. The context label reports RoleContext and
// unknown names report the empty role.
func (bt *BowTie) RoleOf(name string) Role {
	if bt.context != "" && name == bt.context {
		if _, isNode := bt.index[name]; !isNode {
			return RoleContext
		}
	}
	if i, ok := bt.index[name]; ok {
		return bt.nodes[i].Role
	}
	return ""
}

// RoleMap returns the role of every diagram member, context included.
func (bt *BowTie) RoleMap() map[string]Role {
	out := make(map[string]Role)
	for _, name := range bt.AllBowtieNodes() {
		out[name] = bt.RoleOf(name)
	}
	return out
}

// RandomNodes lists random variables in declaration order.
func (bt *BowTie) RandomNodes() []string {
	var out []string
	for _, n := range bt.nodes {
		if n.IsRandom() {
			out = append(out, n.Name)
		}
	}
	return out
}

// DeterministicNodes lists computed nodes in declaration order.
func (bt *BowTie) DeterministicNodes() []string {
	var out []string
	for _, n := range bt.nodes {
		if !n.IsRandom() {
			out = append(out, n.Name)
		}
	}
	return out
}

func copyNames(in []string) []string {
	return append([]string(nil), in...)
}
