package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/pipeline"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

func newRenderCmd(global *globalOptions) *cobra.Command {
	var (
		sc  scenarioFlags
		out outputFlags
	)

	cmd := &cobra.Command{
		Use:   "render <archive>",
		Short: "Re-analyse a saved trace archive and write diagrams",
		Long: `render loads a trace archive written by "bowtie run --archive", recomputes
barrier effectiveness and likelihoods against the scenario that produced it,
and writes the configured diagram formats. Nothing is re-sampled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			out.apply(cmd, cfg)
			// the archive already exists; do not rewrite it
			cfg.Output.Archive = false

			tr, err := trace.OpenArchive(args[0])
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			if !cmd.Flags().Changed("scenario") && sc.file == "" {
				sc.name = tr.Model
			}
			scenario, err := sc.resolve()
			if err != nil {
				return err
			}
			if scenario.Name != tr.Model {
				return fmt.Errorf("archive was sampled from %q, not %q", tr.Model, scenario.Name)
			}

			logger := global.logger(cmd, cfg)
			runner, err := pipeline.New(cfg,
				pipeline.WithLogger(logger),
				pipeline.WithMetrics(metrics.NewRegistry()))
			if err != nil {
				return err
			}
			res, err := runner.Analyze(scenario, tr)
			if err != nil {
				return err
			}
			if err := runner.PrintReport(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if err := runner.WriteOutputs(cmd.Context(), res); err != nil {
				return err
			}
			logger.Info("render complete",
				logging.Bowtie(scenario.Name),
				logging.RunID(tr.RunID),
				logging.Count(len(res.Files)))
			return runner.Finish()
		},
	}

	sc.register(cmd)
	out.register(cmd)
	return cmd
}
