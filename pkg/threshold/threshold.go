// Package threshold holds the gate functions that wire bow-tie nodes together.
//
// Every gate has a scalar form that evaluates a single draw and a vector form
// that maps the scalar form over equally long sample vectors. Vector forms
// allocate a fresh result and never modify their arguments.
package threshold

import (
	"errors"
	"fmt"
)

const (
	// DefaultBarrierThreshold is the condition level a threat has to exceed
	// to get through a barrier.
	DefaultBarrierThreshold = 1.0
	// DefaultCauseThreshold is the condition level above which a cause fires.
	DefaultCauseThreshold = 0.0
	// DefaultFactorThreshold is the condition level above which an
	// escalatory factor passes its input on.
	DefaultFactorThreshold = 0.0
	// Signal is the value a firing cause emits when no input is given.
	Signal = 1.0
)

// ErrLengthMismatch is returned when vectors in one gate have different lengths.
var ErrLengthMismatch = errors.New("sample vectors differ in length")

// ErrNoInputs is returned by the variadic gates when called with nothing.
var ErrNoInputs = errors.New("gate needs at least one input")

// SwitchValue returns input when condition is strictly above threshold, 0 otherwise.
func SwitchValue(condition, input, threshold float64) float64 {
	if condition > threshold {
		return input
	}
	return 0
}

// BarrierValue lets input through when condition beats the barrier threshold.
func BarrierValue(condition, input, threshold float64) float64 {
	return SwitchValue(condition, input, threshold)
}

// CauseValue fires input when condition is above threshold.
func CauseValue(condition, input, threshold float64) float64 {
	return SwitchValue(condition, input, threshold)
}

// FactorValue passes input when the escalatory condition is above threshold.
func FactorValue(condition, input, threshold float64) float64 {
	return SwitchValue(condition, input, threshold)
}

// ConsequenceValue is the identity: a consequence is whatever reaches it.
func ConsequenceValue(input float64) float64 {
	return input
}

// TopEventValue is the identity.
func TopEventValue(input float64) float64 {
	return input
}

// CombineValues is an OR gate: 1 when the inputs sum to at least 1.
func CombineValues(values ...float64) float64 {
	if sum(values) >= 1 {
		return 1
	}
	return 0
}

// InvertValues is a NOT gate over the summed inputs.
func InvertValues(values ...float64) float64 {
	if sum(values) >= 1 {
		return 0
	}
	return 1
}

// InvertingAndValue negates input when test is set and passes it through otherwise.
func InvertingAndValue(input, test float64) float64 {
	if test >= 1 {
		return InvertValues(input)
	}
	return input
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Barrier applies BarrierValue draw by draw.
func Barrier(condition, input []float64, threshold float64) ([]float64, error) {
	return switchVec("barrier", condition, input, threshold)
}

// Cause applies CauseValue draw by draw.
func Cause(condition, input []float64, threshold float64) ([]float64, error) {
	return switchVec("cause", condition, input, threshold)
}

// Factor applies FactorValue draw by draw.
func Factor(condition, input []float64, threshold float64) ([]float64, error) {
	return switchVec("factor", condition, input, threshold)
}

// Consequence returns a copy of input.
func Consequence(input []float64) []float64 {
	return clone(input)
}

// TopEvent returns a copy of input.
func TopEvent(input []float64) []float64 {
	return clone(input)
}

// Combine ORs any number of signals draw by draw.
func Combine(inputs ...[]float64) ([]float64, error) {
	return reduceVec("combine", CombineValues, inputs)
}

// Invert NOTs the per-draw sum of its inputs.
func Invert(inputs ...[]float64) ([]float64, error) {
	return reduceVec("invert", InvertValues, inputs)
}

// InvertingAnd applies InvertingAndValue draw by draw.
func InvertingAnd(input, test []float64) ([]float64, error) {
	if len(input) != len(test) {
		return nil, fmt.Errorf("inverting_and: input has %d draws, test has %d: %w", len(input), len(test), ErrLengthMismatch)
	}
	out := make([]float64, len(input))
	for i := range input {
		out[i] = InvertingAndValue(input[i], test[i])
	}
	return out, nil
}

func switchVec(gate string, condition, input []float64, threshold float64) ([]float64, error) {
	if len(condition) != len(input) {
		return nil, fmt.Errorf("%s: condition has %d draws, input has %d: %w", gate, len(condition), len(input), ErrLengthMismatch)
	}
	out := make([]float64, len(input))
	for i := range input {
		out[i] = SwitchValue(condition[i], input[i], threshold)
	}
	return out, nil
}

func reduceVec(gate string, fn func(...float64) float64, inputs [][]float64) ([]float64, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s: %w", gate, ErrNoInputs)
	}
	n := len(inputs[0])
	for i, in := range inputs[1:] {
		if len(in) != n {
			return nil, fmt.Errorf("%s: input %d has %d draws, want %d: %w", gate, i+1, len(in), n, ErrLengthMismatch)
		}
	}

	out := make([]float64, n)
	row := make([]float64, len(inputs))
	for d := 0; d < n; d++ {
		for i, in := range inputs {
			row[i] = in[d]
		}
		out[d] = fn(row...)
	}
	return out, nil
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// Fill returns a vector of n copies of value.
func Fill(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
