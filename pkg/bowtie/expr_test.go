package bowtie

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-bowtie/pkg/threshold"
)

func TestExpr_Eval(t *testing.T) {
	vals := Values{
		"cond":  {2, 0, 1.5, 3},
		"sig":   {1, 1, 1, 0},
		"other": {0, 1, 0, 0},
	}

	tests := []struct {
		name string
		expr Expr
		want []float64
	}{
		{"const", Const(1), []float64{1, 1, 1, 1}},
		{"ref", Ref("sig"), []float64{1, 1, 1, 0}},
		{"barrier default threshold", Barrier(Ref("cond"), Ref("sig")), []float64{1, 0, 1, 0}},
		{"barrier explicit threshold", BarrierAt(Ref("cond"), Ref("sig"), 2), []float64{0, 0, 0, 0}},
		{"cause emits signal", Cause(Ref("cond")), []float64{1, 0, 1, 1}},
		{"factor", Factor(Ref("other"), Ref("sig")), []float64{0, 1, 0, 0}},
		{"combine", Combine(Ref("sig"), Ref("other")), []float64{1, 1, 1, 0}},
		{"invert", Invert(Ref("sig")), []float64{0, 0, 0, 1}},
		{"inverting and", InvertingAnd(Ref("other"), Ref("sig")), []float64{1, 0, 1, 0}},
		{"nested", Consequence(TopEvent(Combine(Ref("other"), Invert(Ref("sig"))))), []float64{0, 1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.expr.Eval(vals, 4)
			if err != nil {
				t.Fatalf("Eval failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Eval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpr_Refs(t *testing.T) {
	e := Barrier(Ref("d"), Combine(Ref("a"), Ref("b"), Ref("a")))
	if got, want := e.Refs(), []string{"d", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Refs = %v, want %v", got, want)
	}
	if Const(3).Refs() != nil {
		t.Error("Const has no references")
	}
	if got := InvertingAnd(Ref("x"), Ref("y")).String(); got != "inverting_and(x, y)" {
		t.Errorf("String = %q", got)
	}
}

func TestExpr_EvalErrors(t *testing.T) {
	if _, err := Ref("missing").Eval(Values{}, 1); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("missing ref err = %v", err)
	}
	if _, err := Ref("short").Eval(Values{"short": {1}}, 2); !errors.Is(err, threshold.ErrLengthMismatch) {
		t.Errorf("short ref err = %v", err)
	}
}
