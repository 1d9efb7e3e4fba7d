package bowtie

import (
	"fmt"
	"strings"
)

// Builder assembles a bow-tie. Variables have to be declared before any
// expression refers to them. The first error is kept and returned by Build,
// so calls can be chained without checking each one.
type Builder struct {
	name     string
	context  string
	nodes    []*Node
	byName   map[string]*Node
	roles    map[Role][]string
	topEvent string
	built    bool
	err      error
}

// NewBuilder starts a bow-tie called name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		byName: make(map[string]*Node),
		roles:  make(map[Role][]string),
	}
}

// Err returns the first error recorded so far.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(op, node string, cause error) *Builder {
	if b.err == nil {
		b.err = NewModelError(op, node, cause)
	}
	return b
}

func (b *Builder) usable(op string) bool {
	if b.built {
		b.fail(op, "", ErrFrozen)
		return false
	}
	return b.err == nil
}

// Context sets the label-only context of the diagram, e.g. "Flight activity".
func (b *Builder) Context(label string) *Builder {
	if !b.usable("Context") {
		return b
	}
	b.context = strings.TrimSpace(label)
	return b
}

// Random declares a latent random variable.
func (b *Builder) Random(name string, dist Distribution) *Builder {
	if !b.usable("Random") {
		return b
	}
	if dist == nil {
		return b.fail("Random", name, fmt.Errorf("%w: missing distribution", ErrInvalidNode))
	}
	if err := dist.Validate(); err != nil {
		return b.fail("Random", name, err)
	}
	return b.add("Random", &Node{Name: name, Role: RoleLatent, Distribution: dist})
}

// Deterministic declares an untagged node computed from expr.
func (b *Builder) Deterministic(name string, expr Expr) *Builder {
	if !b.usable("Deterministic") {
		return b
	}
	if err := validateExpr(expr); err != nil {
		return b.fail("Deterministic", name, err)
	}
	parents := expr.Refs()
	for _, p := range parents {
		if _, ok := b.byName[p]; !ok {
			return b.fail("Deterministic", name, fmt.Errorf("%w: %q must be declared first", ErrUnknownNode, p))
		}
	}
	return b.add("Deterministic", &Node{Name: name, Role: RoleLatent, Expr: expr, Parents: parents})
}

func (b *Builder) add(op string, n *Node) *Builder {
	if strings.TrimSpace(n.Name) == "" {
		return b.fail(op, n.Name, fmt.Errorf("%w: empty name", ErrInvalidNode))
	}
	if _, exists := b.byName[n.Name]; exists {
		return b.fail(op, n.Name, ErrDuplicateNodeName)
	}
	b.nodes = append(b.nodes, n)
	b.byName[n.Name] = n
	return b
}

// Tag assigns role to already declared nodes. Tagging a node again with the
// same role is a no-op.
func (b *Builder) Tag(role Role, names ...string) *Builder {
	if !b.usable("Tag") {
		return b
	}
	if role == RoleContext {
		if len(names) > 0 {
			b.context = names[0]
		}
		return b
	}
	if _, ok := roleCodes[role]; !ok || role == RoleLatent {
		return b.fail("Tag", "", fmt.Errorf("%w: cannot tag with role %q", ErrInvalidNode, role))
	}
	for _, name := range names {
		n, ok := b.byName[name]
		if !ok {
			return b.fail("Tag", name, ErrUnknownNode)
		}
		if n.Role == role {
			continue
		}
		if n.Role != RoleLatent {
			return b.fail("Tag", name, fmt.Errorf("%w: is %s, cannot become %s", ErrRoleConflict, n.Role, role))
		}
		if role == RoleTopEvent {
			if b.topEvent != "" {
				return b.fail("Tag", name, fmt.Errorf("%w: top event is already %q", ErrRoleConflict, b.topEvent))
			}
			b.topEvent = name
		}
		n.Role = role
		b.roles[role] = append(b.roles[role], name)
	}
	return b
}

// Cause declares and tags a cause.
func (b *Builder) Cause(name string, expr Expr) *Builder {
	return b.Deterministic(name, expr).Tag(RoleCause, name)
}

// PreventativeBarrier declares and tags a barrier between causes and the top event.
func (b *Builder) PreventativeBarrier(name string, expr Expr) *Builder {
	return b.Deterministic(name, expr).Tag(RolePreventativeBarrier, name)
}

// MitigationBarrier declares and tags a barrier between the top event and consequences.
func (b *Builder) MitigationBarrier(name string, expr Expr) *Builder {
	return b.Deterministic(name, expr).Tag(RoleMitigationBarrier, name)
}

// TopEvent declares and tags the top event.
func (b *Builder) TopEvent(name string, expr Expr) *Builder {
	return b.Deterministic(name, expr).Tag(RoleTopEvent, name)
}

// Consequence declares and tags a consequence.
func (b *Builder) Consequence(name string, expr Expr) *Builder {
	return b.Deterministic(name, expr).Tag(RoleConsequence, name)
}

// EscalatoryFactor declares and tags an escalatory factor.
func (b *Builder) EscalatoryFactor(name string, expr Expr) *Builder {
	return b.Deterministic(name, expr).Tag(RoleEscalatoryFactor, name)
}

// Build validates the model and returns it frozen. The builder cannot be used
// afterwards.
func (b *Builder) Build() (*BowTie, error) {
	if b.built {
		return nil, NewModelError("Build", b.name, ErrFrozen)
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.topEvent == "" {
		return nil, NewModelError("Build", b.name, ErrMissingTopEvent)
	}

	bt := &BowTie{
		name:     b.name,
		context:  b.context,
		nodes:    make([]Node, len(b.nodes)),
		index:    make(map[string]int, len(b.nodes)),
		topEvent: b.topEvent,
		causes:   append([]string(nil), b.roles[RoleCause]...),
		conseq:   append([]string(nil), b.roles[RoleConsequence]...),
		prevent:  append([]string(nil), b.roles[RolePreventativeBarrier]...),
		mitigate: append([]string(nil), b.roles[RoleMitigationBarrier]...),
		escalate: append([]string(nil), b.roles[RoleEscalatoryFactor]...),
	}
	for i, n := range b.nodes {
		bt.nodes[i] = n.clone()
		bt.index[n.Name] = i
	}
	bt.buildGraph()

	order, err := bt.topologicalSort()
	if err != nil {
		return nil, NewModelError("Build", b.name, err)
	}
	bt.order = order

	b.built = true
	return bt, nil
}
