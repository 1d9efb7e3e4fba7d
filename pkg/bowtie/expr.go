package bowtie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bowtie/pkg/threshold"
)

// Values maps node names to their sample vectors for one chain.
type Values map[string][]float64

// Expr is a deterministic formula over other nodes. Expressions are built once
// and evaluated for every chain; they hold no state.
type Expr interface {
	// Refs lists the nodes the expression reads, in first-use order.
	Refs() []string
	// Eval computes n draws from the parent vectors in vals.
	Eval(vals Values, n int) ([]float64, error)
	String() string
}

type refExpr struct {
	name string
}

// Ref reads the samples of another node.
func Ref(name string) Expr {
	return refExpr{name: name}
}

func (r refExpr) Refs() []string { return []string{r.name} }

func (r refExpr) Eval(vals Values, n int) ([]float64, error) {
	v, ok := vals[r.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, r.name)
	}
	if len(v) != n {
		return nil, fmt.Errorf("node %q has %d draws, want %d: %w", r.name, len(v), n, threshold.ErrLengthMismatch)
	}
	return v, nil
}

func (r refExpr) String() string {
	if needsQuote(r.name) {
		return strconv.Quote(r.name)
	}
	return r.name
}

// needsQuote reports whether name would not read back as the same bare
// reference.
func needsQuote(name string) bool {
	if name == "" || strings.TrimSpace(name) != name || strings.ContainsAny(name, ",()\"") {
		return true
	}
	_, err := strconv.ParseFloat(name, 64)
	return err == nil
}

type constExpr struct {
	value float64
}

// Const is a fixed value broadcast to every draw.
func Const(v float64) Expr {
	return constExpr{value: v}
}

func (c constExpr) Refs() []string { return nil }

func (c constExpr) Eval(_ Values, n int) ([]float64, error) {
	return threshold.Fill(n, c.value), nil
}

func (c constExpr) String() string { return strconv.FormatFloat(c.value, 'g', -1, 64) }

// GateKind names a threshold gate.
type GateKind string

const (
	GateBarrier      GateKind = "barrier"
	GateCause        GateKind = "cause"
	GateFactor       GateKind = "factor"
	GateConsequence  GateKind = "consequence"
	GateTopEvent     GateKind = "topevent"
	GateCombine      GateKind = "combine"
	GateInvert       GateKind = "invert"
	GateInvertingAnd GateKind = "inverting_and"
)

type switchExpr struct {
	kind      GateKind
	condition Expr
	input     Expr
	threshold float64
}

// Barrier passes input where condition exceeds threshold.DefaultBarrierThreshold.
func Barrier(condition, input Expr) Expr {
	return BarrierAt(condition, input, threshold.DefaultBarrierThreshold)
}

// BarrierAt is Barrier with an explicit threshold.
func BarrierAt(condition, input Expr, level float64) Expr {
	return switchExpr{kind: GateBarrier, condition: condition, input: input, threshold: level}
}

// Cause emits threshold.Signal where condition is above zero.
func Cause(condition Expr) Expr {
	return CauseAt(condition, Const(threshold.Signal), threshold.DefaultCauseThreshold)
}

// CauseAt emits input where condition is above level.
func CauseAt(condition, input Expr, level float64) Expr {
	return switchExpr{kind: GateCause, condition: condition, input: input, threshold: level}
}

// Factor passes input where the escalatory condition is above zero.
func Factor(condition, input Expr) Expr {
	return FactorAt(condition, input, threshold.DefaultFactorThreshold)
}

// FactorAt is Factor with an explicit threshold.
func FactorAt(condition, input Expr, level float64) Expr {
	return switchExpr{kind: GateFactor, condition: condition, input: input, threshold: level}
}

func (s switchExpr) Refs() []string {
	return mergeRefs(s.condition, s.input)
}

func (s switchExpr) Eval(vals Values, n int) ([]float64, error) {
	cond, err := s.condition.Eval(vals, n)
	if err != nil {
		return nil, err
	}
	in, err := s.input.Eval(vals, n)
	if err != nil {
		return nil, err
	}
	switch s.kind {
	case GateCause:
		return threshold.Cause(cond, in, s.threshold)
	case GateFactor:
		return threshold.Factor(cond, in, s.threshold)
	default:
		return threshold.Barrier(cond, in, s.threshold)
	}
}

func (s switchExpr) String() string {
	return fmt.Sprintf("%s(%s, %s, %s)", s.kind, s.condition, s.input, strconv.FormatFloat(s.threshold, 'g', -1, 64))
}

type identityExpr struct {
	kind  GateKind
	input Expr
}

// Consequence is the identity gate for consequence nodes.
func Consequence(input Expr) Expr {
	return identityExpr{kind: GateConsequence, input: input}
}

// TopEvent is the identity gate for the top event.
func TopEvent(input Expr) Expr {
	return identityExpr{kind: GateTopEvent, input: input}
}

func (i identityExpr) Refs() []string { return i.input.Refs() }

func (i identityExpr) Eval(vals Values, n int) ([]float64, error) {
	in, err := i.input.Eval(vals, n)
	if err != nil {
		return nil, err
	}
	if i.kind == GateTopEvent {
		return threshold.TopEvent(in), nil
	}
	return threshold.Consequence(in), nil
}

func (i identityExpr) String() string {
	return fmt.Sprintf("%s(%s)", i.kind, i.input)
}

type reduceExpr struct {
	kind   GateKind
	inputs []Expr
}

// Combine is an OR gate over its inputs.
func Combine(inputs ...Expr) Expr {
	return reduceExpr{kind: GateCombine, inputs: inputs}
}

// Invert is a NOT gate over the sum of its inputs.
func Invert(inputs ...Expr) Expr {
	return reduceExpr{kind: GateInvert, inputs: inputs}
}

func (r reduceExpr) Refs() []string {
	return mergeRefs(r.inputs...)
}

func (r reduceExpr) Eval(vals Values, n int) ([]float64, error) {
	ins := make([][]float64, len(r.inputs))
	for i, e := range r.inputs {
		v, err := e.Eval(vals, n)
		if err != nil {
			return nil, err
		}
		ins[i] = v
	}
	if r.kind == GateInvert {
		return threshold.Invert(ins...)
	}
	return threshold.Combine(ins...)
}

func (r reduceExpr) String() string {
	parts := make([]string, len(r.inputs))
	for i, e := range r.inputs {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s(%s)", r.kind, strings.Join(parts, ", "))
}

type invertingAndExpr struct {
	input Expr
	test  Expr
}

// InvertingAnd negates input on draws where test is set.
func InvertingAnd(input, test Expr) Expr {
	return invertingAndExpr{input: input, test: test}
}

func (e invertingAndExpr) Refs() []string {
	return mergeRefs(e.input, e.test)
}

func (e invertingAndExpr) Eval(vals Values, n int) ([]float64, error) {
	in, err := e.input.Eval(vals, n)
	if err != nil {
		return nil, err
	}
	test, err := e.test.Eval(vals, n)
	if err != nil {
		return nil, err
	}
	return threshold.InvertingAnd(in, test)
}

func (e invertingAndExpr) String() string {
	return fmt.Sprintf("%s(%s, %s)", GateInvertingAnd, e.input, e.test)
}

func mergeRefs(exprs ...Expr) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, r := range e.Refs() {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// validateExpr rejects nil sub-expressions and gates without inputs.
func validateExpr(e Expr) error {
	switch x := e.(type) {
	case nil:
		return fmt.Errorf("%w: missing expression", ErrInvalidNode)
	case refExpr:
		if x.name == "" {
			return fmt.Errorf("%w: empty reference", ErrInvalidNode)
		}
	case switchExpr:
		if err := validateExpr(x.condition); err != nil {
			return err
		}
		return validateExpr(x.input)
	case identityExpr:
		return validateExpr(x.input)
	case reduceExpr:
		if len(x.inputs) == 0 {
			return fmt.Errorf("%w: %s needs at least one input", ErrInvalidNode, x.kind)
		}
		for _, in := range x.inputs {
			if err := validateExpr(in); err != nil {
				return err
			}
		}
	case invertingAndExpr:
		if err := validateExpr(x.input); err != nil {
			return err
		}
		return validateExpr(x.test)
	}
	return nil
}
