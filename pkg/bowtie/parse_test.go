package bowtie

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		wantRefs []string
	}{
		{"Bad Luck", "Bad Luck", []string{"Bad Luck"}},
		{"2.5", "2.5", nil},
		{"cause(Even Split)", "cause(Even Split, 1, 0)", []string{"Even Split"}},
		{"cause(invert(Even Split))", "cause(invert(Even Split), 1, 0)", []string{"Even Split"}},
		{"barrier(c, Bad Luck)", "barrier(c, Bad Luck, 1)", []string{"c", "Bad Luck"}},
		{"barrier(d, ATC Warning, 2)", "barrier(d, ATC Warning, 2)", []string{"d", "ATC Warning"}},
		{"barrier(d, combine(No Flight Plan, Flight Plan))", "barrier(d, combine(No Flight Plan, Flight Plan), 1)", []string{"d", "No Flight Plan", "Flight Plan"}},
		{"factor(f, x)", "factor(f, x, 0)", []string{"f", "x"}},
		{"consequence(inverting_and(SA, TE))", "consequence(inverting_and(SA, TE))", []string{"SA", "TE"}},
		{"topevent( x )", "topevent(x)", []string{"x"}},
		{`barrier(c, "odd, name")`, "barrier(c, odd, name, 1)", []string{"c", "odd, name"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := ParseExpr(tt.in)
			if err != nil {
				t.Fatalf("ParseExpr: %v", err)
			}
			if e.String() != tt.want {
				t.Errorf("String() = %q, want %q", e.String(), tt.want)
			}
			if !reflect.DeepEqual(e.Refs(), tt.wantRefs) {
				t.Errorf("Refs() = %v, want %v", e.Refs(), tt.wantRefs)
			}
		})
	}
}

func TestParseExpr_RoundTrip(t *testing.T) {
	exprs := []Expr{
		BarrierAt(Ref("d"), Combine(Ref("a"), Ref("b")), 2),
		Consequence(InvertingAnd(Ref("x"), Ref("y"))),
		CauseAt(Ref("c"), Const(3), 0.5),
		Invert(Ref("s")),
		Barrier(Ref("Weather, poor"), Ref("Threat")),
		Combine(Ref("7"), Ref("Threat")),
		Factor(Ref("Call sign (old)"), Ref(`Say "again"`)),
		Combine(Ref(" padded "), Ref("1e3")),
	}
	for _, e := range exprs {
		back, err := ParseExpr(e.String())
		if err != nil {
			t.Fatalf("ParseExpr(%q): %v", e.String(), err)
		}
		if back.String() != e.String() {
			t.Errorf("round trip %q -> %q", e.String(), back.String())
		}
		if !slices.Equal(back.Refs(), e.Refs()) {
			t.Errorf("round trip %q refs = %q, want %q", e.String(), back.Refs(), e.Refs())
		}
	}
}

func TestParseExpr_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"barrier(c)",
		"barrier(c, x, y)",
		"warp(x)",
		"combine(a, b",
		"topevent(a, b)",
		"inverting_and(a)",
		`"unterminated`,
		"a) b",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseExpr(in)
			if !errors.Is(err, ErrInvalidNode) {
				t.Errorf("ParseExpr(%q) error = %v, want ErrInvalidNode", in, err)
			}
		})
	}
}
