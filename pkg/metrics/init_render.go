package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.RenderTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bowtie_render_total",
			Help: "Diagram renders by output format and outcome",
		},
		[]string{"format", "status"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bowtie_render_duration_seconds",
			Help:    "Time spent rendering a diagram",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 5},
		},
		[]string{"format"},
	)

	r.ArtifactUploadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bowtie_artifact_writes_total",
			Help: "Artifacts written by sink and outcome",
		},
		[]string{"sink", "status"},
	)
}
