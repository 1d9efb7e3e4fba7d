// Package sampler draws forward samples from a bow-tie model. Nothing in the
// model is observed, so ancestral sampling gives exact draws from the prior.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/parallel"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

// ErrSamplingFailed wraps any failure inside a chain.
var ErrSamplingFailed = errors.New("sampling failed")

// Defaults used by the drivers.
const (
	DefaultDraws  = 2000
	DefaultChains = 4
	DefaultSeed   = 1000
)

// pcgStream is the second PCG word; the first is Seed + chain.
const pcgStream = 0x9e3779b97f4a7c15

// Options controls the shape and seeding of a run.
type Options struct {
	Draws   int
	Chains  int
	Seed    int64
	Workers int // <= 0 means one per CPU
}

// DefaultOptions returns 2000 draws on 4 chains with seed 1000.
func DefaultOptions() Options {
	return Options{Draws: DefaultDraws, Chains: DefaultChains, Seed: DefaultSeed}
}

// Validate rejects negative sizes. Zero fields are filled with defaults by Sample.
func (o Options) Validate() error {
	if o.Draws < 0 {
		return fmt.Errorf("%w: draws must not be negative, got %d", ErrSamplingFailed, o.Draws)
	}
	if o.Chains < 0 {
		return fmt.Errorf("%w: chains must not be negative, got %d", ErrSamplingFailed, o.Chains)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Draws == 0 {
		o.Draws = DefaultDraws
	}
	if o.Chains == 0 {
		o.Chains = DefaultChains
	}
	return o
}

// Sampler runs chains on a worker pool and reports to a logger and metrics registry.
type Sampler struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger. The default is logging.DefaultLogger().
func WithLogger(l logging.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// WithMetrics records run metrics on r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Sampler) { s.metrics = r }
}

// New creates a Sampler.
func New(opts ...Option) *Sampler {
	s := &Sampler{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}
	return s
}

// Sample draws with a default Sampler.
func Sample(ctx context.Context, bt *bowtie.BowTie, opts Options) (*trace.Trace, error) {
	return New().Sample(ctx, bt, opts)
}

type chainResult struct {
	values bowtie.Values
	err    error
}

// Sample draws opts.Chains independent chains of opts.Draws each. Chain c is
// seeded with opts.Seed + c, so equal options give an identical trace.
func (s *Sampler) Sample(ctx context.Context, bt *bowtie.BowTie, opts Options) (*trace.Trace, error) {
	if bt == nil {
		return nil, fmt.Errorf("%w: nil model", ErrSamplingFailed)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	logger := s.logger.With(logging.Component("sampler"), logging.Bowtie(bt.Name()))
	stage := logging.StartStage(logger, "sampling",
		logging.Int("chains", opts.Chains), logging.Draws(opts.Draws), logging.Seed(opts.Seed))

	start := time.Now()
	tr, err := s.sample(ctx, bt, opts, logger)
	if s.metrics != nil {
		s.metrics.RecordSampling(bt.Name(), opts.Chains, opts.Draws, time.Since(start), err)
	}
	if err != nil {
		stage.EndError(err)
		return nil, err
	}
	stage.End(logging.RunID(tr.RunID), logging.Count(len(tr.Variables())))
	return tr, nil
}

func (s *Sampler) sample(ctx context.Context, bt *bowtie.BowTie, opts Options, logger logging.Logger) (*trace.Trace, error) {
	order := bt.TopologicalOrder()
	results := make([]chainResult, opts.Chains)

	pool := parallel.NewWorkerPool(min(opts.Workers, opts.Chains), parallel.WithPanicHandler(func(r any) {
		logger.Error("chain task panicked outside evaluation", logging.Any("panic", r))
	}))

	for c := 0; c < opts.Chains; c++ {
		chain := c
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				results[chain].err = err
				return
			}
			chainStart := time.Now()
			vals, err := runChain(bt, order, chain, opts.Draws, opts.Seed+int64(chain))
			results[chain] = chainResult{values: vals, err: err}
			if err == nil {
				if s.metrics != nil {
					s.metrics.RecordChain(time.Since(chainStart), len(bt.RandomNodes()), len(bt.DeterministicNodes()))
				}
				logger.Debug("chain finished", logging.Chain(chain), logging.Latency(time.Since(chainStart)))
			}
		})
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sampling %s: %w", bt.Name(), err)
	}
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
	}

	tr := trace.New(bt.Name(), opts.Chains, opts.Draws, opts.Seed)
	for _, name := range order {
		for c, r := range results {
			if err := tr.Set(name, c, r.values[name]); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrSamplingFailed, err)
			}
		}
	}
	return tr, nil
}

// runChain samples one chain. Random nodes draw whole vectors; deterministic
// nodes are evaluated once their parents exist.
func runChain(bt *bowtie.BowTie, order []string, chain, draws int, seed int64) (vals bowtie.Values, err error) {
	var current string
	defer func() {
		if r := recover(); r != nil {
			vals = nil
			err = fmt.Errorf("%w: chain %d node %q: panic: %v", ErrSamplingFailed, chain, current, r)
		}
	}()

	rng := rand.New(rand.NewPCG(uint64(seed), pcgStream))
	vals = make(bowtie.Values, len(order))

	for _, name := range order {
		current = name
		node, _ := bt.Node(name)
		if node.IsRandom() {
			vals[name] = node.Distribution.Sample(rng, draws)
			continue
		}
		out, evalErr := node.Expr.Eval(vals, draws)
		if evalErr != nil {
			return nil, fmt.Errorf("%w: chain %d node %q: %w", ErrSamplingFailed, chain, name, evalErr)
		}
		vals[name] = out
	}
	return vals, nil
}
