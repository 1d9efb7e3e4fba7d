package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StatusOf maps an error to a status label.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// RecordSampling records a finished sampling run.
func (r *Registry) RecordSampling(bowtie string, chains, draws int, duration time.Duration, err error) {
	r.SamplingRunsTotal.WithLabelValues(bowtie, StatusOf(err)).Inc()
	r.SamplingDuration.WithLabelValues(bowtie).Observe(duration.Seconds())
	if err == nil {
		r.DrawsTotal.WithLabelValues(bowtie).Add(float64(chains * draws))
	}
}

// RecordChain records one chain's runtime and how many nodes it evaluated.
func (r *Registry) RecordChain(duration time.Duration, randomNodes, deterministicNodes int) {
	r.ChainDuration.Observe(duration.Seconds())
	r.NodesEvaluatedTotal.WithLabelValues("random").Add(float64(randomNodes))
	r.NodesEvaluatedTotal.WithLabelValues("deterministic").Add(float64(deterministicNodes))
}

// RecordAnalysis counts one analysis computation.
func (r *Registry) RecordAnalysis(kind string, err error) {
	r.AnalysisTotal.WithLabelValues(kind, StatusOf(err)).Inc()
}

// SetBarrier publishes the effectiveness figures of one barrier.
func (r *Registry) SetBarrier(bowtie, barrier string, effectiveness, cumulative float64) {
	r.BarrierEffectiveness.WithLabelValues(bowtie, barrier).Set(effectiveness)
	r.CumulativeEffectiveness.WithLabelValues(bowtie, barrier).Set(cumulative)
}

// SetLikelihood publishes the likelihood of a cause, consequence or top event.
func (r *Registry) SetLikelihood(bowtie, node, role string, value float64) {
	r.Likelihood.WithLabelValues(bowtie, node, role).Set(value)
}

// SetConsequenceSum publishes the summed consequence likelihood.
func (r *Registry) SetConsequenceSum(bowtie string, value float64) {
	r.ConsequenceSum.WithLabelValues(bowtie).Set(value)
}

// RecordRender records one diagram render.
func (r *Registry) RecordRender(format string, duration time.Duration, err error) {
	r.RenderTotal.WithLabelValues(format, StatusOf(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordArtifact records one artifact write.
func (r *Registry) RecordArtifact(sink string, err error) {
	r.ArtifactUploadsTotal.WithLabelValues(sink, StatusOf(err)).Inc()
}

// WriteTextfile dumps all metrics in the text exposition format, for pickup
// by a node_exporter textfile collector after a batch run.
func (r *Registry) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
