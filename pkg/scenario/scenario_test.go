package scenario

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bowtie/pkg/analysis"
	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/sampler"
)

func runScenario(t *testing.T, s *Scenario) *analysis.Report {
	t.Helper()
	quiet := logging.NewNopLogger()
	tr, err := sampler.New(sampler.WithLogger(quiet)).Sample(context.Background(), s.Model,
		sampler.Options{Draws: 2000, Chains: 2, Seed: 1000})
	require.NoError(t, err)
	r, err := analysis.New(analysis.WithLogger(quiet)).Analyze(s.Model, tr)
	require.NoError(t, err)
	return r
}

func TestAirprox_Structure(t *testing.T) {
	s, err := Airprox()
	require.NoError(t, err)
	bt := s.Model

	assert.Equal(t, AirproxContext, bt.ContextLabel())
	assert.Equal(t, []string{AirproxBadLuck, AirproxNoFlightPlan}, bt.Causes())
	assert.Equal(t, []string{AirproxFlightPlan, AirproxATCWarning, AirproxSkyScanning, AirproxSituationalAwareness}, bt.AllBarriers())
	assert.Equal(t, []string{AirproxCollision, AirproxAvoidingAction, AirproxLossOfSeparation}, bt.FinalNodes())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "Even Split"}, bt.RandomNodes())
	assert.Equal(t, []string{AirproxNoFlightPlan, AirproxFlightPlan}, bt.BowtieParents(AirproxATCWarning))
	assert.Contains(t, bt.Parents(AirproxAvoidingAction), AirproxLossOfSeparation)
	assert.Equal(t, [][2]string{{AirproxLossOfSeparation, AirproxAvoidingAction}}, s.RemoveEdges)
}

func TestAirprox_Analysis(t *testing.T) {
	s, err := Airprox()
	require.NoError(t, err)
	r := runScenario(t, s)

	// Exactly one cause fires on every draw.
	bad, _ := r.Likelihood(AirproxBadLuck)
	none, _ := r.Likelihood(AirproxNoFlightPlan)
	assert.InDelta(t, 1.0, bad+none, 1e-12)
	assert.InDelta(t, 0.5, bad, 0.05)

	for _, b := range r.Barriers {
		assert.GreaterOrEqual(t, b.Effectiveness, 0.0, b.Name)
		assert.LessOrEqual(t, b.Effectiveness, 1.0, b.Name)
		assert.GreaterOrEqual(t, b.Cumulative, 0.0, b.Name)
		assert.LessOrEqual(t, b.Cumulative, 1.0, b.Name)
	}

	// A sigma 5 condition beats threshold 1 about 42% of the time.
	fp, ok := r.Barrier(AirproxFlightPlan)
	require.True(t, ok)
	assert.InDelta(t, 1-0.42, fp.Effectiveness, 0.06)

	// With the barrier closed nothing reaches Avoiding Action unless the top
	// event happened, so the two consequences split the top event.
	coll, _ := r.Likelihood(AirproxCollision)
	avoid, _ := r.Likelihood(AirproxAvoidingAction)
	noCons, _ := r.Likelihood(AirproxLossOfSeparation)
	assert.False(t, math.IsNaN(r.ConsequenceSum))
	assert.InDelta(t, coll+avoid+noCons, r.ConsequenceSum, 1e-12)
}

func TestLogicTest(t *testing.T) {
	s, err := LogicTest()
	require.NoError(t, err)
	assert.Equal(t, bowtie.RoleCause, s.Model.RoleOf(LogicTestSignal))

	r := runScenario(t, s)
	b, ok := r.Barrier(LogicTestBarrier)
	require.True(t, ok)
	// P(Normal(3,5) > 0) is about 0.726.
	assert.InDelta(t, 1-0.726, b.Effectiveness, 0.03)
	assert.InDelta(t, b.Effectiveness, b.Cumulative, 1e-12)
}

func TestRegistry(t *testing.T) {
	r := Builtins()
	assert.Equal(t, []string{AirproxName, LogicTestName}, r.Names())

	s, err := r.Get(AirproxName)
	require.NoError(t, err)
	assert.Equal(t, AirproxName, s.Model.Name())

	_, err = r.Get("volcano")
	assert.ErrorIs(t, err, ErrUnknownScenario)

	assert.Error(t, r.Register(AirproxName, Airprox))
}

func TestLoadFile_MatchesBuiltin(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "airprox.yaml"))
	require.NoError(t, err)

	builtin, err := Airprox()
	require.NoError(t, err)

	assert.Equal(t, "airprox-file", s.Name)
	assert.Equal(t, builtin.Model.AllBowtieNodes(), s.Model.AllBowtieNodes())
	assert.Equal(t, builtin.Model.RoleMap(), s.Model.RoleMap())
	assert.Equal(t, builtin.RemoveEdges, s.RemoveEdges)
	for _, name := range s.Model.AllBarriers() {
		assert.Equal(t, builtin.Model.BowtieParents(name), s.Model.BowtieParents(name), name)
	}
	n, _ := s.Model.Node(AirproxSkyScanning)
	assert.Equal(t, "barrier(d, ATC Warning, 2)", n.Formula())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "duplicate name",
			yaml: `
name: dup
variables:
  - {name: x, distribution: normal}
  - {name: x, distribution: normal}
  - {name: t, role: top event, expr: topevent(x)}
`,
			wantErr: bowtie.ErrDuplicateNodeName,
		},
		{
			name: "forward reference",
			yaml: `
name: fwd
variables:
  - {name: t, role: top event, expr: topevent(x)}
  - {name: x, distribution: normal}
`,
			wantErr: bowtie.ErrUnknownNode,
		},
		{
			name: "bad distribution",
			yaml: `
name: dist
variables:
  - {name: x, distribution: normal, params: {sigma: 0}}
`,
			wantErr: sampler.ErrInvalidDistribution,
		},
		{
			name: "missing top event",
			yaml: `
name: top
variables:
  - {name: x, distribution: normal}
`,
			wantErr: bowtie.ErrMissingTopEvent,
		},
		{
			name: "bad expression",
			yaml: `
name: expr
variables:
  - {name: x, distribution: normal}
  - {name: t, role: top event, expr: "warp(x)"}
`,
			wantErr: bowtie.ErrInvalidNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"no name":      "variables: [{name: x, distribution: normal}]",
		"no variables": "name: empty",
		"both forms":   "name: b\nvariables: [{name: x, distribution: normal, expr: x}]",
		"neither form": "name: n\nvariables: [{name: x}]",
		"unknown key":  "name: u\nseed: 4\nvariables: [{name: x, distribution: normal}]",
		"unknown role": "name: r\nvariables: [{name: x, distribution: normal, role: villain}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
