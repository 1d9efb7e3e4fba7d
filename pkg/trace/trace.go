// Package trace stores the sampled values of every model variable, indexed by
// chain and draw.
package trace

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrVariableNotFound = errors.New("variable not in trace")
	ErrShapeMismatch    = errors.New("values do not match trace shape")
	ErrEmptyTrace       = errors.New("trace has no samples")
)

// Trace holds sampled values. The sampler fills it with Set; everything
// downstream only reads.
type Trace struct {
	RunID     string
	Model     string
	Chains    int
	Draws     int
	Seed      int64
	CreatedAt time.Time

	values map[string][][]float64
	order  []string
}

// New allocates an empty trace of chains x draws.
func New(model string, chains, draws int, seed int64) *Trace {
	return &Trace{
		RunID:     uuid.NewString(),
		Model:     model,
		Chains:    chains,
		Draws:     draws,
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
		values:    make(map[string][][]float64),
	}
}

// Set stores the draws of one chain for a variable.
func (t *Trace) Set(name string, chain int, draws []float64) error {
	if chain < 0 || chain >= t.Chains {
		return fmt.Errorf("%w: chain %d outside [0,%d)", ErrShapeMismatch, chain, t.Chains)
	}
	if len(draws) != t.Draws {
		return fmt.Errorf("%w: %q chain %d has %d draws, want %d", ErrShapeMismatch, name, chain, len(draws), t.Draws)
	}
	chains, ok := t.values[name]
	if !ok {
		chains = make([][]float64, t.Chains)
		t.values[name] = chains
		t.order = append(t.order, name)
	}
	chains[chain] = draws
	return nil
}

// Has reports whether the trace holds name.
func (t *Trace) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// Variables lists variable names in the order they were first stored.
func (t *Trace) Variables() []string {
	return append([]string(nil), t.order...)
}

// TotalSamples is chains x draws.
func (t *Trace) TotalSamples() int {
	return t.Chains * t.Draws
}

// Chain returns the draws of one chain. The slice must not be modified.
func (t *Trace) Chain(name string, chain int) ([]float64, error) {
	chains, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	if chain < 0 || chain >= len(chains) || chains[chain] == nil {
		return nil, fmt.Errorf("%w: %q has no chain %d", ErrShapeMismatch, name, chain)
	}
	return chains[chain], nil
}

// Flatten returns all draws of all chains, chain-major.
func (t *Trace) Flatten(name string) ([]float64, error) {
	chains, err := t.lookup(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, t.TotalSamples())
	for _, c := range chains {
		out = append(out, c...)
	}
	return out, nil
}

// Sum adds up every sample of name over the full chain x draw grid.
func (t *Trace) Sum(name string) (float64, error) {
	chains, err := t.lookup(name)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, c := range chains {
		for _, v := range c {
			total += v
		}
	}
	return total, nil
}

// Mean is Sum divided by TotalSamples.
func (t *Trace) Mean(name string) (float64, error) {
	if t.TotalSamples() == 0 {
		return 0, ErrEmptyTrace
	}
	s, err := t.Sum(name)
	if err != nil {
		return 0, err
	}
	return s / float64(t.TotalSamples()), nil
}

// Validate checks that every variable has every chain filled.
func (t *Trace) Validate() error {
	for _, name := range t.order {
		for c, draws := range t.values[name] {
			if len(draws) != t.Draws {
				return fmt.Errorf("%w: %q chain %d has %d draws, want %d", ErrShapeMismatch, name, c, len(draws), t.Draws)
			}
		}
	}
	return nil
}

func (t *Trace) lookup(name string) ([][]float64, error) {
	chains, ok := t.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, name)
	}
	return chains, nil
}
