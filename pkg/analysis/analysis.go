// Package analysis turns a sampled trace into bow-tie statistics: barrier
// effectiveness, consequence likelihoods and cause likelihoods.
package analysis

import (
	"fmt"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

// Analysis kinds, used as metric labels.
const (
	KindEffectiveness = "effectiveness"
	KindCumulative    = "cumulative_effectiveness"
	KindConsequence   = "consequence_likelihood"
	KindCause         = "cause_likelihood"
)

// BarrierEffectiveness is the share of the signal reaching each barrier that
// the barrier stops: 1 - sum(b) / sum of its bow-tie parents. A barrier that
// never passes anything is fully effective.
func BarrierEffectiveness(bt *bowtie.BowTie, tr *trace.Trace) (map[string]float64, error) {
	out := make(map[string]float64, len(bt.AllBarriers()))
	for _, b := range bt.AllBarriers() {
		v, err := barrierEffectiveness(bt, tr, b)
		if err != nil {
			return nil, err
		}
		out[b] = v
	}
	return out, nil
}

func barrierEffectiveness(bt *bowtie.BowTie, tr *trace.Trace, barrier string) (float64, error) {
	const op = "BarrierEffectiveness"

	if len(bt.Parents(barrier)) == 0 {
		return 0, bowtie.NewModelError(op, barrier, bowtie.ErrInvalidTopology)
	}
	parents := bt.BowtieParents(barrier)
	if len(parents) == 0 {
		return 0, bowtie.NewModelError(op, barrier,
			fmt.Errorf("%w: none of %v is a bow-tie node", bowtie.ErrInvalidTopology, bt.Parents(barrier)))
	}

	passed, err := tr.Sum(barrier)
	if err != nil {
		return 0, err
	}
	if passed == 0 {
		return 1, nil
	}

	var reached float64
	for _, p := range parents {
		s, err := tr.Sum(p)
		if err != nil {
			return 0, err
		}
		reached += s
	}
	if reached == 0 {
		return 0, bowtie.NewModelError(op, barrier,
			fmt.Errorf("%w: barrier passed %g with no upstream signal", bowtie.ErrDegenerateSample, passed))
	}
	return 1 - passed/reached, nil
}

// CumulativeBarrierEffectiveness is 1 - sum(b) / total samples for each
// barrier: how often nothing gets past it at all.
func CumulativeBarrierEffectiveness(bt *bowtie.BowTie, tr *trace.Trace) (map[string]float64, error) {
	total, err := totalSamples(tr)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(bt.AllBarriers()))
	for _, b := range bt.AllBarriers() {
		s, err := tr.Sum(b)
		if err != nil {
			return nil, err
		}
		out[b] = 1 - s/total
	}
	return out, nil
}

// ConsequenceLikelihood reports sum/total for every consequence, and for the
// top event the probability that nothing happens (1 - sum/total). The second
// return value is the sum over all final nodes.
func ConsequenceLikelihood(bt *bowtie.BowTie, tr *trace.Trace) (map[string]float64, float64, error) {
	total, err := totalSamples(tr)
	if err != nil {
		return nil, 0, err
	}
	out := make(map[string]float64, len(bt.FinalNodes()))
	var sum float64
	for _, n := range bt.FinalNodes() {
		s, err := tr.Sum(n)
		if err != nil {
			return nil, 0, err
		}
		v := s / total
		if n == bt.TopEventName() {
			v = 1 - v
		}
		out[n] = v
		sum += v
	}
	return out, sum, nil
}

// CauseLikelihood is sum/total for every cause.
func CauseLikelihood(bt *bowtie.BowTie, tr *trace.Trace) (map[string]float64, error) {
	total, err := totalSamples(tr)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(bt.Causes()))
	for _, c := range bt.Causes() {
		s, err := tr.Sum(c)
		if err != nil {
			return nil, err
		}
		out[c] = s / total
	}
	return out, nil
}

func totalSamples(tr *trace.Trace) (float64, error) {
	n := tr.TotalSamples()
	if n == 0 {
		return 0, trace.ErrEmptyTrace
	}
	return float64(n), nil
}
