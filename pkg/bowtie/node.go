package bowtie

import (
	"math/rand/v2"
)

// Distribution draws values for a random node. Implementations live in the
// sampler package.
type Distribution interface {
	Sample(rng *rand.Rand, n int) []float64
	Validate() error
	String() string
}

// Node is a named variable of the model: either random (Distribution set) or
// deterministic (Expr set).
type Node struct {
	Name         string
	Role         Role
	Distribution Distribution
	Expr         Expr
	// Parents are the nodes Expr reads, in first-use order. Empty for random nodes.
	Parents []string
}

// IsRandom reports whether the node is sampled from a distribution.
func (n Node) IsRandom() bool {
	return n.Distribution != nil
}

// Formula describes how the node gets its values.
func (n Node) Formula() string {
	if n.IsRandom() {
		return n.Distribution.String()
	}
	if n.Expr != nil {
		return n.Expr.String()
	}
	return ""
}

func (n Node) clone() Node {
	out := n
	out.Parents = append([]string(nil), n.Parents...)
	return out
}
