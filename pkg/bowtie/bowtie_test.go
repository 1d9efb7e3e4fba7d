package bowtie

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

type fixedDist struct {
	value float64
}

func (f fixedDist) Sample(_ *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f.value
	}
	return out
}

func (f fixedDist) Validate() error { return nil }
func (f fixedDist) String() string  { return "Fixed" }

type badDist struct{}

func (badDist) Sample(_ *rand.Rand, n int) []float64 { return make([]float64, n) }
func (badDist) Validate() error                      { return errors.New("sigma must be positive") }
func (badDist) String() string                       { return "Bad" }

// buildAirproxLike mirrors the shape of the near-miss model with two causes,
// chained preventative barriers and a conditional-negation consequence.
func buildAirproxLike(t *testing.T) *BowTie {
	t.Helper()
	bt, err := NewBuilder("airprox").
		Context("Flight activity").
		Random("c", fixedDist{1}).
		Random("d", fixedDist{1}).
		Random("e", fixedDist{1}).
		Random("split", fixedDist{1}).
		Cause("Bad Luck", Cause(Ref("split"))).
		Cause("No Flight Plan", Cause(Invert(Ref("split")))).
		PreventativeBarrier("Flight Plan", Barrier(Ref("c"), Ref("Bad Luck"))).
		PreventativeBarrier("ATC Warning", Barrier(Ref("d"), Combine(Ref("No Flight Plan"), Ref("Flight Plan")))).
		TopEvent("Loss of Separation", TopEvent(Ref("ATC Warning"))).
		MitigationBarrier("Situational Awareness", Barrier(Ref("e"), Ref("Loss of Separation"))).
		Consequence("Collision", Consequence(Ref("Situational Awareness"))).
		Consequence("Avoiding Action", Consequence(InvertingAnd(Ref("Situational Awareness"), Ref("Loss of Separation")))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return bt
}

func TestBuilder_RoleLists(t *testing.T) {
	bt := buildAirproxLike(t)

	if got, want := bt.AllBarriers(), []string{"Flight Plan", "ATC Warning", "Situational Awareness"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AllBarriers = %v, want %v", got, want)
	}
	if got, want := bt.FinalNodes(), []string{"Collision", "Avoiding Action", "Loss of Separation"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FinalNodes = %v, want %v", got, want)
	}

	want := []string{
		"Flight Plan", "ATC Warning", "Situational Awareness",
		"Loss of Separation", "Flight activity",
		"Bad Luck", "No Flight Plan",
		"Collision", "Avoiding Action",
	}
	if got := bt.AllBowtieNodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllBowtieNodes = %v, want %v", got, want)
	}
}

func TestBuilder_Roles(t *testing.T) {
	bt := buildAirproxLike(t)

	tests := map[string]Role{
		"Bad Luck":              RoleCause,
		"Flight Plan":           RolePreventativeBarrier,
		"Situational Awareness": RoleMitigationBarrier,
		"Loss of Separation":    RoleTopEvent,
		"Collision":             RoleConsequence,
		"Flight activity":       RoleContext,
		"c":                     RoleLatent,
		"missing":               "",
	}
	for name, want := range tests {
		if got := bt.RoleOf(name); got != want {
			t.Errorf("RoleOf(%q) = %q, want %q", name, got, want)
		}
	}

	if len(bt.RoleMap()) != len(bt.AllBowtieNodes()) {
		t.Errorf("RoleMap has %d entries, want %d", len(bt.RoleMap()), len(bt.AllBowtieNodes()))
	}
}

func TestBowTie_Graph(t *testing.T) {
	bt := buildAirproxLike(t)

	if got, want := bt.Parents("ATC Warning"), []string{"d", "No Flight Plan", "Flight Plan"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Parents = %v, want %v", got, want)
	}
	if got, want := bt.BowtieParents("ATC Warning"), []string{"No Flight Plan", "Flight Plan"}; !reflect.DeepEqual(got, want) {
		t.Errorf("BowtieParents = %v, want %v", got, want)
	}
	if got, want := bt.Children("Loss of Separation"), []string{"Situational Awareness", "Avoiding Action"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Children = %v, want %v", got, want)
	}

	pos := make(map[string]int)
	for i, name := range bt.TopologicalOrder() {
		pos[name] = i
	}
	if len(pos) != bt.Len() {
		t.Fatalf("TopologicalOrder has %d nodes, want %d", len(pos), bt.Len())
	}
	for _, e := range bt.Edges() {
		if pos[e[0]] >= pos[e[1]] {
			t.Errorf("edge %s -> %s violates topological order", e[0], e[1])
		}
	}
}

func TestBowTie_NodeKinds(t *testing.T) {
	bt := buildAirproxLike(t)

	if got, want := bt.RandomNodes(), []string{"c", "d", "e", "split"}; !reflect.DeepEqual(got, want) {
		t.Errorf("RandomNodes = %v, want %v", got, want)
	}
	if len(bt.DeterministicNodes())+len(bt.RandomNodes()) != bt.Len() {
		t.Error("random and deterministic nodes must partition the model")
	}

	n, ok := bt.Node("Flight Plan")
	if !ok {
		t.Fatal("Flight Plan not found")
	}
	if n.IsRandom() || n.Formula() != "barrier(c, Bad Luck, 1)" {
		t.Errorf("Flight Plan formula = %q", n.Formula())
	}

	// Returned nodes are copies.
	n.Parents[0] = "tampered"
	if bt.Parents("Flight Plan")[0] != "c" {
		t.Error("Node returned shared parent slice")
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*BowTie, error)
		want  error
	}{
		{
			name: "duplicate name",
			build: func() (*BowTie, error) {
				return NewBuilder("x").
					Random("a", fixedDist{1}).
					Random("a", fixedDist{0}).
					Build()
			},
			want: ErrDuplicateNodeName,
		},
		{
			name: "reference before declaration",
			build: func() (*BowTie, error) {
				return NewBuilder("x").
					TopEvent("te", TopEvent(Ref("later"))).
					Build()
			},
			want: ErrUnknownNode,
		},
		{
			name: "tag unknown node",
			build: func() (*BowTie, error) {
				return NewBuilder("x").Tag(RoleCause, "ghost").Build()
			},
			want: ErrUnknownNode,
		},
		{
			name: "missing top event",
			build: func() (*BowTie, error) {
				return NewBuilder("x").Random("a", fixedDist{1}).Build()
			},
			want: ErrMissingTopEvent,
		},
		{
			name: "second top event",
			build: func() (*BowTie, error) {
				return NewBuilder("x").
					Random("a", fixedDist{1}).
					TopEvent("te1", TopEvent(Ref("a"))).
					TopEvent("te2", TopEvent(Ref("a"))).
					Build()
			},
			want: ErrRoleConflict,
		},
		{
			name: "conflicting roles",
			build: func() (*BowTie, error) {
				return NewBuilder("x").
					Random("a", fixedDist{1}).
					Cause("c", Cause(Ref("a"))).
					Tag(RoleConsequence, "c").
					Build()
			},
			want: ErrRoleConflict,
		},
		{
			name: "invalid distribution",
			build: func() (*BowTie, error) {
				return NewBuilder("x").Random("a", badDist{}).Build()
			},
			want: nil,
		},
		{
			name: "gate without inputs",
			build: func() (*BowTie, error) {
				return NewBuilder("x").Deterministic("or", Combine()).Build()
			},
			want: ErrInvalidNode,
		},
		{
			name: "empty name",
			build: func() (*BowTie, error) {
				return NewBuilder("x").Random(" ", fixedDist{1}).Build()
			},
			want: ErrInvalidNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bt, err := tt.build()
			if err == nil {
				t.Fatalf("expected error, got model %v", bt.Name())
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			var modelErr *ModelError
			if !errors.As(err, &modelErr) {
				t.Errorf("err %T is not a *ModelError", err)
			}
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	b := NewBuilder("x").
		Random("a", fixedDist{1}).
		Random("a", fixedDist{1}).
		Tag(RoleCause, "ghost")

	if !errors.Is(b.Err(), ErrDuplicateNodeName) {
		t.Errorf("Err = %v, want duplicate name", b.Err())
	}
}

func TestBuilder_FrozenAfterBuild(t *testing.T) {
	b := NewBuilder("x").Random("a", fixedDist{1}).TopEvent("te", TopEvent(Ref("a")))
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := b.Build(); !errors.Is(err, ErrFrozen) {
		t.Errorf("second Build err = %v, want ErrFrozen", err)
	}
	b.Random("b", fixedDist{1})
	if !errors.Is(b.Err(), ErrFrozen) {
		t.Errorf("Random after Build err = %v, want ErrFrozen", b.Err())
	}
}

func TestBuilder_TagIsIdempotent(t *testing.T) {
	bt, err := NewBuilder("x").
		Random("a", fixedDist{1}).
		Cause("c", Cause(Ref("a"))).
		Tag(RoleCause, "c").
		TopEvent("te", TopEvent(Ref("c"))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := bt.Causes(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("Causes = %v", got)
	}
	if bt.ContextLabel() != "" {
		t.Errorf("ContextLabel = %q, want empty", bt.ContextLabel())
	}
	for _, name := range bt.AllBowtieNodes() {
		if name == "" {
			t.Error("AllBowtieNodes must skip an unset context")
		}
	}
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"cause":                RoleCause,
		"ca":                   RoleCause,
		"Top Event":            RoleTopEvent,
		"topevent":             RoleTopEvent,
		"pb":                   RolePreventativeBarrier,
		"preventative_barrier": RolePreventativeBarrier,
		"Mitigation Barrier":   RoleMitigationBarrier,
		"ef":                   RoleEscalatoryFactor,
		"con":                  RoleContext,
		"co":                   RoleConsequence,
	}
	for in, want := range tests {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseRole("hazard"); err == nil {
		t.Error("ParseRole should reject unknown roles")
	}
}

func TestRoleHelpers(t *testing.T) {
	if !RolePreventativeBarrier.IsBarrier() || !RoleMitigationBarrier.IsBarrier() || RoleCause.IsBarrier() {
		t.Error("IsBarrier mismatch")
	}
	if RoleTopEvent.Title() != "Top Event" || RoleTopEvent.Code() != "te" {
		t.Errorf("Top event title/code = %q/%q", RoleTopEvent.Title(), RoleTopEvent.Code())
	}
}

func TestModelError(t *testing.T) {
	err := NewModelError("BarrierEffectiveness", "Flight Plan", ErrInvalidTopology)
	if err.Error() != `BarrierEffectiveness "Flight Plan": barriers must have at least one parent node` {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidTopology) || !IsTopologyError(err) {
		t.Error("ModelError must unwrap to its cause")
	}
	if IsTopologyError(ErrDuplicateNodeName) {
		t.Error("duplicate name is not a topology error")
	}
}
