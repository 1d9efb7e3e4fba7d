package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bowtie_analysis_total",
			Help: "Analysis computations by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	r.BarrierEffectiveness = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bowtie_barrier_effectiveness",
			Help: "Share of the signal reaching a barrier that the barrier stops",
		},
		[]string{"bowtie", "barrier"},
	)

	r.CumulativeEffectiveness = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bowtie_barrier_cumulative_effectiveness",
			Help: "Share of all samples in which nothing passes the barrier",
		},
		[]string{"bowtie", "barrier"},
	)

	r.Likelihood = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bowtie_node_likelihood",
			Help: "Likelihood of causes and consequences; no-consequence probability for the top event",
		},
		[]string{"bowtie", "node", "role"},
	)

	r.ConsequenceSum = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bowtie_consequence_likelihood_sum",
			Help: "Sum of consequence likelihoods including the top event",
		},
		[]string{"bowtie"},
	)
}
