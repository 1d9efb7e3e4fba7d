// Package visualization turns a bow-tie model and its analysis report into
// a styled diagram, and writes that diagram as Graphviz DOT, JSON or SVG.
package visualization

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-bowtie/pkg/analysis"
	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
)

// ErrMissingStatistic is returned when the report has no figure for a diagram node.
var ErrMissingStatistic = errors.New("report has no statistic for node")

// DirectionLR lays the diagram out left to right, causes first.
const DirectionLR = "LR"

// Style holds the Graphviz attributes of one role.
type Style struct {
	FillColor string `json:"fillcolor,omitempty"`
	FontColor string `json:"fontcolor,omitempty"`
	Shape     string `json:"shape,omitempty"`
	Fill      bool   `json:"filled,omitempty"`
}

// Styles maps each diagram role to its look. The context is a bare label.
var Styles = map[bowtie.Role]Style{
	bowtie.RoleCause:               {FillColor: "blue", FontColor: "white", Shape: "box", Fill: true},
	bowtie.RoleConsequence:         {FillColor: "red", Shape: "box", Fill: true},
	bowtie.RoleContext:             {},
	bowtie.RoleTopEvent:            {FillColor: "red", Shape: "circle", Fill: true},
	bowtie.RolePreventativeBarrier: {FillColor: "white", Shape: "box", Fill: true},
	bowtie.RoleMitigationBarrier:   {FillColor: "white", Shape: "box", Fill: true},
	bowtie.RoleEscalatoryFactor:    {FillColor: "yellow", Shape: "box", Fill: true},
	bowtie.RoleLatent:              {Shape: "ellipse"},
}

// StyleFor returns the style of role, or the zero style for unknown roles.
func StyleFor(role bowtie.Role) Style {
	return Styles[role]
}

// DiagramNode is one box, circle or label on the diagram.
type DiagramNode struct {
	ID    string      `json:"id"`
	Role  bowtie.Role `json:"role"`
	Label string      `json:"label"`
	Style Style       `json:"style"`
}

// DiagramEdge is a directed dependency between two diagram nodes.
type DiagramEdge struct {
	From string `json:"source"`
	To   string `json:"target"`
}

// Diagram is a renderer-neutral graph description.
type Diagram struct {
	Name      string        `json:"name"`
	Direction string        `json:"direction"`
	Nodes     []DiagramNode `json:"nodes"`
	Edges     []DiagramEdge `json:"links"`
}

// Node finds a node by ID.
func (d *Diagram) Node(id string) (DiagramNode, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return DiagramNode{}, false
}

// HasEdge reports whether from -> to is on the diagram.
func (d *Diagram) HasEdge(from, to string) bool {
	for _, e := range d.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// RemoveEdge deletes from -> to and reports whether it was present.
func (d *Diagram) RemoveEdge(from, to string) bool {
	for i, e := range d.Edges {
		if e.From == from && e.To == to {
			d.Edges = append(d.Edges[:i], d.Edges[i+1:]...)
			return true
		}
	}
	return false
}

// DiagramOptions adjusts BuildDiagram.
type DiagramOptions struct {
	// RemoveEdges lists (from, to) pairs to drop after pruning, such as the
	// feedback edge a conditional negation adds from the top event. Pairs not
	// on the diagram are ignored.
	RemoveEdges [][2]string
	// Direction defaults to DirectionLR.
	Direction string
}

// BuildDiagram lays out the bow-tie members of bt, labelled with the figures
// in r. Latent variables and their edges are dropped.
func BuildDiagram(bt *bowtie.BowTie, r *analysis.Report, opts DiagramOptions) (*Diagram, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil report", ErrMissingStatistic)
	}

	d := &Diagram{Name: bt.Name(), Direction: opts.Direction}
	if d.Direction == "" {
		d.Direction = DirectionLR
	}

	// Nodes follow declaration order; the context label goes first.
	members := make(map[string]bool)
	if ctx := bt.ContextLabel(); ctx != "" {
		members[ctx] = true
		d.Nodes = append(d.Nodes, DiagramNode{
			ID:    ctx,
			Role:  bowtie.RoleContext,
			Label: heading(bowtie.RoleContext, ctx),
			Style: StyleFor(bowtie.RoleContext),
		})
	}
	for _, n := range bt.Nodes() {
		if n.Role == bowtie.RoleLatent || members[n.Name] {
			continue
		}
		label, err := statLabel(bt, r, n.Name, n.Role)
		if err != nil {
			return nil, err
		}
		members[n.Name] = true
		d.Nodes = append(d.Nodes, DiagramNode{ID: n.Name, Role: n.Role, Label: label, Style: StyleFor(n.Role)})
	}

	for _, e := range bt.Edges() {
		if members[e[0]] && members[e[1]] {
			d.Edges = append(d.Edges, DiagramEdge{From: e[0], To: e[1]})
		}
	}
	for _, pair := range opts.RemoveEdges {
		d.RemoveEdge(pair[0], pair[1])
	}
	return d, nil
}

// BuildModelDiagram draws every variable of bt with no pruning. Random
// variables show their distribution, computed ones their formula.
func BuildModelDiagram(bt *bowtie.BowTie) *Diagram {
	d := &Diagram{Name: bt.Name(), Direction: DirectionLR}
	for _, n := range bt.Nodes() {
		lines := []string{n.Name}
		if f := n.Formula(); f != "" {
			lines = append(lines, f)
		}
		d.Nodes = append(d.Nodes, DiagramNode{
			ID:    n.Name,
			Role:  n.Role,
			Label: heading(n.Role, lines...),
			Style: StyleFor(n.Role),
		})
	}
	for _, e := range bt.Edges() {
		d.Edges = append(d.Edges, DiagramEdge{From: e[0], To: e[1]})
	}
	return d
}

func statLabel(bt *bowtie.BowTie, r *analysis.Report, name string, role bowtie.Role) (string, error) {
	missing := func() error {
		return fmt.Errorf("%w: %s %q", ErrMissingStatistic, role, name)
	}

	switch role {
	case bowtie.RolePreventativeBarrier, bowtie.RoleMitigationBarrier:
		b, ok := r.Barrier(name)
		if !ok {
			return "", missing()
		}
		return heading(role, name, fmt.Sprintf("E: %.4f CE: %.4f", b.Effectiveness, b.Cumulative)), nil
	case bowtie.RoleTopEvent:
		v, ok := r.Likelihood(name)
		if !ok {
			return "", missing()
		}
		return heading(role, name, fmt.Sprintf("Probability of\nNo Consequences\n%.4f", v)), nil
	case bowtie.RoleCause, bowtie.RoleConsequence:
		v, ok := r.Likelihood(name)
		if !ok {
			return "", missing()
		}
		return heading(role, name, fmt.Sprintf("%.4f", v)), nil
	default:
		return heading(role, name), nil
	}
}

// heading puts the role title above the remaining label lines.
func heading(role bowtie.Role, lines ...string) string {
	return strings.Join(append([]string{role.Title()}, lines...), "\n")
}
