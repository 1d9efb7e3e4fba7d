package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	t.Fatalf("metric has neither counter nor gauge")
	return 0
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.GetPrometheusRegistry() == nil {
		t.Fatal("expected prometheus registry")
	}
	if r.SamplingRunsTotal == nil || r.AnalysisTotal == nil || r.RenderTotal == nil {
		t.Fatal("expected metrics to be initialised")
	}
}

func TestDefaultRegistrySingleton(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry should return the same instance")
	}
}

func TestRecordSampling(t *testing.T) {
	r := NewRegistry()

	r.RecordSampling("airprox", 4, 2000, 10*time.Millisecond, nil)
	r.RecordSampling("airprox", 4, 2000, time.Millisecond, errors.New("boom"))

	c, err := r.SamplingRunsTotal.GetMetricWithLabelValues("airprox", StatusSuccess)
	if err != nil {
		t.Fatal(err)
	}
	if v := counterValue(t, c); v != 1 {
		t.Errorf("success runs = %v, want 1", v)
	}

	c, _ = r.SamplingRunsTotal.GetMetricWithLabelValues("airprox", StatusError)
	if v := counterValue(t, c); v != 1 {
		t.Errorf("error runs = %v, want 1", v)
	}

	// Failed runs do not contribute draws.
	c, _ = r.DrawsTotal.GetMetricWithLabelValues("airprox")
	if v := counterValue(t, c); v != 8000 {
		t.Errorf("draws = %v, want 8000", v)
	}
}

func TestRecordChain(t *testing.T) {
	r := NewRegistry()
	r.RecordChain(time.Millisecond, 3, 5)
	r.RecordChain(time.Millisecond, 3, 5)

	c, _ := r.NodesEvaluatedTotal.GetMetricWithLabelValues("deterministic")
	if v := counterValue(t, c); v != 10 {
		t.Errorf("deterministic nodes = %v, want 10", v)
	}
}

func TestGauges(t *testing.T) {
	r := NewRegistry()
	r.SetBarrier("airprox", "Flight Plan", 0.25, 0.75)
	r.SetLikelihood("airprox", "Collision", "consequence", 0.1)
	r.SetConsequenceSum("airprox", 1.0)

	g, _ := r.BarrierEffectiveness.GetMetricWithLabelValues("airprox", "Flight Plan")
	if v := counterValue(t, g); v != 0.25 {
		t.Errorf("effectiveness = %v", v)
	}
	g, _ = r.CumulativeEffectiveness.GetMetricWithLabelValues("airprox", "Flight Plan")
	if v := counterValue(t, g); v != 0.75 {
		t.Errorf("cumulative = %v", v)
	}
	g, _ = r.Likelihood.GetMetricWithLabelValues("airprox", "Collision", "consequence")
	if v := counterValue(t, g); v != 0.1 {
		t.Errorf("likelihood = %v", v)
	}
	g, _ = r.ConsequenceSum.GetMetricWithLabelValues("airprox")
	if v := counterValue(t, g); v != 1.0 {
		t.Errorf("sum = %v", v)
	}
}

func TestRecordRenderAndArtifact(t *testing.T) {
	r := NewRegistry()
	r.RecordRender("dot", time.Millisecond, nil)
	r.RecordRender("png", time.Millisecond, errors.New("graphviz missing"))
	r.RecordArtifact("dir", nil)
	r.RecordAnalysis("effectiveness", nil)

	c, _ := r.RenderTotal.GetMetricWithLabelValues("png", StatusError)
	if v := counterValue(t, c); v != 1 {
		t.Errorf("png errors = %v", v)
	}
	c, _ = r.ArtifactUploadsTotal.GetMetricWithLabelValues("dir", StatusSuccess)
	if v := counterValue(t, c); v != 1 {
		t.Errorf("artifact writes = %v", v)
	}
	c, _ = r.AnalysisTotal.GetMetricWithLabelValues("effectiveness", StatusSuccess)
	if v := counterValue(t, c); v != 1 {
		t.Errorf("analyses = %v", v)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordSampling("logictest", 1, 10, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "nested", "bowtie.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `bowtie_sampling_runs_total{bowtie="logictest",status="success"} 1`) {
		t.Errorf("textfile missing sampling counter:\n%s", data)
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(nil) != StatusSuccess {
		t.Error("nil should be success")
	}
	if StatusOf(errors.New("x")) != StatusError {
		t.Error("non-nil should be error")
	}
}
