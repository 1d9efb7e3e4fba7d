// Package pipeline runs a scenario end to end: sample, analyse, render and
// publish.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dd0wney/cluso-bowtie/pkg/analysis"
	"github.com/dd0wney/cluso-bowtie/pkg/artifacts"
	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/report"
	"github.com/dd0wney/cluso-bowtie/pkg/sampler"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
	"github.com/dd0wney/cluso-bowtie/pkg/visualization"
)

// Result is everything one run produced.
type Result struct {
	Scenario  *scenario.Scenario
	Trace     *trace.Trace
	Report    *analysis.Report
	Summaries []trace.Summary
	Diagram   *visualization.Diagram
	Files     []string
}

// Runner executes scenarios under one configuration.
type Runner struct {
	cfg      *config.Config
	logger   logging.Logger
	metrics  *metrics.Registry
	sampler  *sampler.Sampler
	analyzer *analysis.Analyzer
	graphviz visualization.Graphviz
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger shared by every stage.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the registry shared by every stage.
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Runner) { r.metrics = m }
}

// New validates cfg and returns a runner.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		logger:   logging.NewNopLogger(),
		graphviz: visualization.Graphviz{Binary: cfg.Output.Graphviz},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logging.Component("pipeline"))
	r.sampler = sampler.New(sampler.WithLogger(r.logger), sampler.WithMetrics(r.metrics))
	r.analyzer = analysis.New(analysis.WithLogger(r.logger), analysis.WithMetrics(r.metrics))
	return r, nil
}

// Config returns the runner configuration.
func (r *Runner) Config() *config.Config { return r.cfg }

// Run samples and analyses sc and builds its diagram. Nothing is written.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario) (*Result, error) {
	return r.RunWith(ctx, sc, r.cfg.SamplerOptions())
}

// RunWith is Run with explicit sampler options.
func (r *Runner) RunWith(ctx context.Context, sc *scenario.Scenario, opts sampler.Options) (*Result, error) {
	tr, err := r.sampler.Sample(ctx, sc.Model, opts)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", sc.Name, err)
	}
	return r.Analyze(sc, tr)
}

// Analyze computes statistics and the diagram for an existing trace, such as
// one loaded from an archive.
func (r *Runner) Analyze(sc *scenario.Scenario, tr *trace.Trace) (*Result, error) {
	bt := sc.Model
	rep, err := r.analyzer.Analyze(bt, tr)
	if err != nil {
		return nil, fmt.Errorf("analyse %s: %w", sc.Name, err)
	}
	summaries, err := tr.SummarizeAll(append(bt.RandomNodes(), bt.DeterministicNodes()...)...)
	if err != nil {
		return nil, err
	}
	d, err := visualization.BuildDiagram(bt, rep, visualization.DiagramOptions{RemoveEdges: sc.RemoveEdges})
	if err != nil {
		return nil, err
	}
	return &Result{Scenario: sc, Trace: tr, Report: rep, Summaries: summaries, Diagram: d}, nil
}

// PrintReport writes the terminal report for res.
func (r *Runner) PrintReport(w io.Writer, res *Result) error {
	title := res.Scenario.Name
	if res.Scenario.Description != "" {
		title += ": " + res.Scenario.Description
	}
	return report.Write(w, title, res.Report, res.Summaries)
}

// WriteOutputs renders every configured format into the output directory
// and appends the paths to res.Files.
func (r *Runner) WriteOutputs(ctx context.Context, res *Result) error {
	dir := r.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	base := filepath.Join(dir, res.Scenario.Name)

	if err := r.writeDiagram(ctx, base, res.Diagram, res); err != nil {
		return err
	}
	if r.cfg.HasFormat(config.FormatJSON) {
		if err := r.write(base+"-report.json", config.FormatJSON, res, func(w io.Writer) error {
			return report.WriteJSON(w, res.Report, res.Summaries)
		}); err != nil {
			return err
		}
	}
	if r.cfg.Output.Model {
		if err := r.writeDiagram(ctx, base+"-model", visualization.BuildModelDiagram(res.Scenario.Model), res); err != nil {
			return err
		}
	}
	if r.cfg.Output.Archive {
		path := base + ".trace"
		if err := trace.SaveArchive(path, res.Trace); err != nil {
			return fmt.Errorf("save trace archive: %w", err)
		}
		res.Files = append(res.Files, path)
		r.logger.Info("trace archive saved", logging.Path(path), logging.RunID(res.Trace.RunID))
	}
	return nil
}

func (r *Runner) writeDiagram(ctx context.Context, base string, d *visualization.Diagram, res *Result) error {
	needDOT := r.cfg.HasFormat(config.FormatDOT) || r.cfg.HasFormat(config.FormatPNG) || r.cfg.HasFormat(config.FormatPDF)
	if needDOT {
		if err := r.write(base+".dot", config.FormatDOT, res, func(w io.Writer) error {
			return visualization.WriteDOT(w, d)
		}); err != nil {
			return err
		}
	}
	if r.cfg.HasFormat(config.FormatSVG) {
		layoutCfg := visualization.DefaultSVGConfig()
		layoutCfg.Seed = uint64(r.cfg.Sampling.Seed)
		layout, err := visualization.NewLayout(r.cfg.Output.Layout, layoutCfg)
		if err != nil {
			return err
		}
		if err := r.write(base+".svg", config.FormatSVG, res, func(w io.Writer) error {
			return visualization.WriteSVG(w, d, layout, layoutCfg)
		}); err != nil {
			return err
		}
	}
	if r.cfg.HasFormat(config.FormatJSON) {
		if err := r.write(base+".json", config.FormatJSON, res, func(w io.Writer) error {
			return visualization.WriteJSON(w, d)
		}); err != nil {
			return err
		}
	}
	for _, format := range []string{config.FormatPNG, config.FormatPDF} {
		if !r.cfg.HasFormat(format) {
			continue
		}
		start := time.Now()
		out, err := r.graphviz.Render(ctx, base+".dot", format)
		r.recordRender(format, start, err)
		if err != nil {
			return err
		}
		res.Files = append(res.Files, out)
	}
	return nil
}

// write renders into memory first so a failed render leaves no partial file.
func (r *Runner) write(path, format string, res *Result, render func(io.Writer) error) error {
	start := time.Now()
	var buf bytes.Buffer
	err := render(&buf)
	if err == nil {
		err = os.WriteFile(path, buf.Bytes(), 0o644)
	}
	r.recordRender(format, start, err)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	res.Files = append(res.Files, path)
	r.logger.Debug("artifact written", logging.Path(path), logging.Format(format))
	return nil
}

func (r *Runner) recordRender(format string, start time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordRender(format, time.Since(start), err)
	}
}

// Sinks returns the artifact destinations named in the configuration.
func (r *Runner) Sinks(ctx context.Context) ([]artifacts.Sink, error) {
	var sinks []artifacts.Sink
	if dir := r.cfg.Upload.Dir; dir != "" {
		sinks = append(sinks, artifacts.NewDirSink(dir))
	}
	if s3cfg := r.cfg.Upload.S3; s3cfg != nil {
		sink, err := artifacts.NewS3Sink(ctx, *s3cfg,
			os.Getenv(artifacts.EnvAccessKey), os.Getenv(artifacts.EnvSecretKey))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

// Publish uploads the files res produced to every configured sink, keyed by
// their paths under the output directory.
func (r *Runner) Publish(ctx context.Context, res *Result) error {
	sinks, err := r.Sinks(ctx)
	if err != nil || len(sinks) == 0 {
		return err
	}
	return artifacts.NewPublisher(sinks,
		artifacts.WithLogger(r.logger), artifacts.WithMetrics(r.metrics)).
		Publish(ctx, r.cfg.Output.Dir, res.Files)
}

// Finish writes the metrics textfile when one is configured.
func (r *Runner) Finish() error {
	path := r.cfg.Metrics.Textfile
	if path == "" || r.metrics == nil {
		return nil
	}
	if err := r.metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Execute runs sc through every stage and prints the report to w.
func (r *Runner) Execute(ctx context.Context, sc *scenario.Scenario, w io.Writer) (*Result, error) {
	res, err := r.Run(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := r.PrintReport(w, res); err != nil {
		return res, err
	}
	if err := r.WriteOutputs(ctx, res); err != nil {
		return res, err
	}
	if err := r.Publish(ctx, res); err != nil {
		return res, err
	}
	return res, r.Finish()
}
