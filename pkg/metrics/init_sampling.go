package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSamplingMetrics() {
	r.SamplingRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bowtie_sampling_runs_total",
			Help: "Total number of sampling runs",
		},
		[]string{"bowtie", "status"},
	)

	r.SamplingDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bowtie_sampling_duration_seconds",
			Help:    "Wall time of a sampling run across all chains",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"bowtie"},
	)

	r.ChainDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bowtie_chain_duration_seconds",
			Help:    "Wall time of a single chain",
			Buckets: []float64{0.0005, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	r.DrawsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bowtie_draws_total",
			Help: "Total number of draws produced, summed over chains",
		},
		[]string{"bowtie"},
	)

	r.NodesEvaluatedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bowtie_nodes_evaluated_total",
			Help: "Node vectors produced by the sampler",
		},
		[]string{"kind"},
	)
}
