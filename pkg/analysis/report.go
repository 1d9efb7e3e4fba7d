package analysis

import (
	"time"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

// BarrierResult holds both effectiveness figures of one barrier.
type BarrierResult struct {
	Name          string      `json:"name"`
	Role          bowtie.Role `json:"role"`
	Effectiveness float64     `json:"effectiveness"`
	Cumulative    float64     `json:"cumulative_effectiveness"`
}

// Likelihood is the likelihood figure of a cause, consequence or top event.
type Likelihood struct {
	Name  string      `json:"name"`
	Role  bowtie.Role `json:"role"`
	Value float64     `json:"likelihood"`
}

// Report collects every statistic for one run, in model order.
type Report struct {
	Model          string          `json:"model"`
	RunID          string          `json:"run_id"`
	TotalSamples   int             `json:"total_samples"`
	Barriers       []BarrierResult `json:"barriers"`
	Causes         []Likelihood    `json:"causes"`
	Consequences   []Likelihood    `json:"consequences"`
	ConsequenceSum float64         `json:"consequence_sum"`
}

// Barrier looks up a barrier result by name.
func (r *Report) Barrier(name string) (BarrierResult, bool) {
	for _, b := range r.Barriers {
		if b.Name == name {
			return b, true
		}
	}
	return BarrierResult{}, false
}

// Likelihood looks up a cause, consequence or top event figure by name.
func (r *Report) Likelihood(name string) (float64, bool) {
	for _, group := range [][]Likelihood{r.Causes, r.Consequences} {
		for _, l := range group {
			if l.Name == name {
				return l.Value, true
			}
		}
	}
	return 0, false
}

// Analyzer runs all analyses and reports progress.
type Analyzer struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithMetrics publishes results on r.
func WithMetrics(r *metrics.Registry) Option {
	return func(a *Analyzer) { a.metrics = r }
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.DefaultLogger()
	}
	return a
}

// Analyze runs all analyses with a default Analyzer.
func Analyze(bt *bowtie.BowTie, tr *trace.Trace) (*Report, error) {
	return New().Analyze(bt, tr)
}

// Analyze runs the four analyses in turn and stops at the first failure.
func (a *Analyzer) Analyze(bt *bowtie.BowTie, tr *trace.Trace) (*Report, error) {
	logger := a.logger.With(logging.Component("analysis"), logging.Bowtie(bt.Name()), logging.RunID(tr.RunID))
	start := time.Now()

	eff, err := BarrierEffectiveness(bt, tr)
	a.record(KindEffectiveness, err)
	if err != nil {
		logger.Error("barrier effectiveness failed", logging.Error(err))
		return nil, err
	}

	cum, err := CumulativeBarrierEffectiveness(bt, tr)
	a.record(KindCumulative, err)
	if err != nil {
		logger.Error("cumulative effectiveness failed", logging.Error(err))
		return nil, err
	}

	cons, consSum, err := ConsequenceLikelihood(bt, tr)
	a.record(KindConsequence, err)
	if err != nil {
		logger.Error("consequence likelihood failed", logging.Error(err))
		return nil, err
	}

	causes, err := CauseLikelihood(bt, tr)
	a.record(KindCause, err)
	if err != nil {
		logger.Error("cause likelihood failed", logging.Error(err))
		return nil, err
	}

	r := &Report{
		Model:          bt.Name(),
		RunID:          tr.RunID,
		TotalSamples:   tr.TotalSamples(),
		ConsequenceSum: consSum,
	}
	for _, b := range bt.AllBarriers() {
		r.Barriers = append(r.Barriers, BarrierResult{
			Name:          b,
			Role:          bt.RoleOf(b),
			Effectiveness: eff[b],
			Cumulative:    cum[b],
		})
	}
	for _, c := range bt.Causes() {
		r.Causes = append(r.Causes, Likelihood{Name: c, Role: bowtie.RoleCause, Value: causes[c]})
	}
	for _, n := range bt.FinalNodes() {
		r.Consequences = append(r.Consequences, Likelihood{Name: n, Role: bt.RoleOf(n), Value: cons[n]})
	}

	a.publish(r)
	logger.Info("analysis complete",
		logging.Count(len(r.Barriers)),
		logging.Float64("consequence_sum", consSum),
		logging.Latency(time.Since(start)))
	return r, nil
}

func (a *Analyzer) record(kind string, err error) {
	if a.metrics != nil {
		a.metrics.RecordAnalysis(kind, err)
	}
}

func (a *Analyzer) publish(r *Report) {
	if a.metrics == nil {
		return
	}
	for _, b := range r.Barriers {
		a.metrics.SetBarrier(r.Model, b.Name, b.Effectiveness, b.Cumulative)
	}
	for _, l := range append(append([]Likelihood(nil), r.Causes...), r.Consequences...) {
		a.metrics.SetLikelihood(r.Model, l.Name, string(l.Role), l.Value)
	}
	a.metrics.SetConsequenceSum(r.Model, r.ConsequenceSum)
}
