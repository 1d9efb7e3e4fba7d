package pipeline

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
	"github.com/dd0wney/cluso-bowtie/pkg/visualization"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sampling.Draws = 250
	cfg.Sampling.Chains = 2
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Formats = []string{config.FormatDOT, config.FormatSVG, config.FormatJSON}
	cfg.Output.Archive = true
	cfg.Output.Model = true
	cfg.Metrics.Textfile = filepath.Join(cfg.Output.Dir, "metrics", "bowtie.prom")
	return cfg
}

func TestExecuteLogicTest(t *testing.T) {
	cfg := testConfig(t)
	runner, err := New(cfg, WithMetrics(metrics.NewRegistry()))
	require.NoError(t, err)

	sc, err := scenario.LogicTest()
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := runner.Execute(context.Background(), sc, &out)
	require.NoError(t, err)

	assert.Equal(t, 500, res.Report.TotalSamples)
	assert.Contains(t, out.String(), scenario.LogicTestBarrier)

	dir := cfg.Output.Dir
	for _, name := range []string{
		"logictest.dot", "logictest.svg", "logictest.json", "logictest-report.json",
		"logictest-model.dot", "logictest-model.svg", "logictest.trace",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, cfg.Metrics.Textfile)
	assert.Len(t, res.Files, 8)
}

func TestDOTRolesRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	runner, err := New(cfg)
	require.NoError(t, err)

	sc, err := scenario.Airprox()
	require.NoError(t, err)
	res, err := runner.Run(context.Background(), sc)
	require.NoError(t, err)
	require.NoError(t, runner.WriteOutputs(context.Background(), res))

	f, err := os.Open(filepath.Join(cfg.Output.Dir, "airprox.dot"))
	require.NoError(t, err)
	defer f.Close()

	roles, err := visualization.ParseDOTRoles(f)
	require.NoError(t, err)
	assert.Equal(t, sc.Model.RoleMap(), roles)
}

func TestArchiveMatchesRun(t *testing.T) {
	cfg := testConfig(t)
	runner, err := New(cfg)
	require.NoError(t, err)

	sc, err := scenario.LogicTest()
	require.NoError(t, err)
	res, err := runner.Run(context.Background(), sc)
	require.NoError(t, err)
	require.NoError(t, runner.WriteOutputs(context.Background(), res))

	tr, err := trace.OpenArchive(filepath.Join(cfg.Output.Dir, "logictest.trace"))
	require.NoError(t, err)
	assert.Equal(t, res.Trace.RunID, tr.RunID)

	want, err := res.Trace.Sum(scenario.LogicTestBarrier)
	require.NoError(t, err)
	got, err := tr.Sum(scenario.LogicTestBarrier)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAnalyzeSummarizesEveryNode(t *testing.T) {
	runner, err := New(testConfig(t))
	require.NoError(t, err)
	sc, err := scenario.LogicTest()
	require.NoError(t, err)

	res, err := runner.Run(context.Background(), sc)
	require.NoError(t, err)

	var names []string
	for _, s := range res.Summaries {
		names = append(names, s.Name)
	}
	want := append(sc.Model.RandomNodes(), sc.Model.DeterministicNodes()...)
	assert.Equal(t, want, names)
	assert.Contains(t, names, scenario.LogicTestBarrier)
	assert.Contains(t, names, scenario.LogicTestTopEvent)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.Draws = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNoSinksWithoutUpload(t *testing.T) {
	runner, err := New(testConfig(t))
	require.NoError(t, err)
	sinks, err := runner.Sinks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sinks)
	assert.NoError(t, runner.Publish(context.Background(), &Result{}))
}

func TestExecuteCopiesRunFilesToUploadDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Textfile = ""
	cfg.Upload.Dir = t.TempDir()
	writeStray(t, cfg.Output.Dir, "airprox.dot")
	writeStray(t, cfg.Output.Dir, filepath.Join(".git", "HEAD"))

	runner, err := New(cfg)
	require.NoError(t, err)
	sinks, err := runner.Sinks(context.Background())
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.Equal(t, "dir", sinks[0].Name())

	sc, err := scenario.LogicTest()
	require.NoError(t, err)
	res, err := runner.Execute(context.Background(), sc, io.Discard)
	require.NoError(t, err)

	var uploaded []string
	err = filepath.WalkDir(cfg.Upload.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(cfg.Upload.Dir, path)
		uploaded = append(uploaded, rel)
		return err
	})
	require.NoError(t, err)

	var want []string
	for _, f := range res.Files {
		rel, err := filepath.Rel(cfg.Output.Dir, f)
		require.NoError(t, err)
		want = append(want, rel)
	}
	assert.ElementsMatch(t, want, uploaded)
	assert.NotContains(t, uploaded, "airprox.dot")
	assert.NotContains(t, uploaded, filepath.Join(".git", "HEAD"))
}

func writeStray(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
}
