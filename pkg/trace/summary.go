package trace

import (
	"math"
	"sort"
)

// Summary describes the marginal distribution of one variable.
type Summary struct {
	Name       string    `json:"name"`
	Mean       float64   `json:"mean"`
	SD         float64   `json:"sd"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Q03        float64   `json:"q03"` // lower bound of the equal-tailed 94% interval
	Q97        float64   `json:"q97"`
	ChainMeans []float64 `json:"chain_means"` // per chain, to see whether chains agree
}

// Summarize computes summary statistics for name.
func (t *Trace) Summarize(name string) (Summary, error) {
	flat, err := t.Flatten(name)
	if err != nil {
		return Summary{}, err
	}
	if len(flat) == 0 {
		return Summary{}, ErrEmptyTrace
	}

	s := Summary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range flat {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(flat))

	var sq float64
	for _, v := range flat {
		d := v - s.Mean
		sq += d * d
	}
	if len(flat) > 1 {
		s.SD = math.Sqrt(sq / float64(len(flat)-1))
	}

	sorted := append([]float64(nil), flat...)
	sort.Float64s(sorted)
	s.Q03 = quantile(sorted, 0.03)
	s.Q97 = quantile(sorted, 0.97)

	for c := 0; c < t.Chains; c++ {
		draws, err := t.Chain(name, c)
		if err != nil {
			return Summary{}, err
		}
		var cs float64
		for _, v := range draws {
			cs += v
		}
		mean := 0.0
		if len(draws) > 0 {
			mean = cs / float64(len(draws))
		}
		s.ChainMeans = append(s.ChainMeans, mean)
	}
	return s, nil
}

// SummarizeAll summarises the named variables, or all of them when names is empty.
func (t *Trace) SummarizeAll(names ...string) ([]Summary, error) {
	if len(names) == 0 {
		names = t.Variables()
	}
	out := make([]Summary, 0, len(names))
	for _, n := range names {
		s, err := t.Summarize(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
