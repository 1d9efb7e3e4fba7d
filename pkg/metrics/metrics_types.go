package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric the toolkit records during a run.
type Registry struct {
	// Sampling
	SamplingRunsTotal   *prometheus.CounterVec
	SamplingDuration    *prometheus.HistogramVec
	ChainDuration       prometheus.Histogram
	DrawsTotal          *prometheus.CounterVec
	NodesEvaluatedTotal *prometheus.CounterVec

	// Analysis
	AnalysisTotal           *prometheus.CounterVec
	BarrierEffectiveness    *prometheus.GaugeVec
	CumulativeEffectiveness *prometheus.GaugeVec
	Likelihood              *prometheus.GaugeVec
	ConsequenceSum          *prometheus.GaugeVec

	// Rendering and artifacts
	RenderTotal          *prometheus.CounterVec
	RenderDuration       *prometheus.HistogramVec
	ArtifactUploadsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics registered on a private
// Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSamplingMetrics()
	r.initAnalysisMetrics()
	r.initRenderMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
