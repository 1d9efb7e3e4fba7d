package main

import (
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/pipeline"
)

// outputFlags override the output section of the configuration.
type outputFlags struct {
	dir     string
	formats []string
	layout  string
	archive bool
	model   bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "output", "o", "", "Output directory")
	cmd.Flags().StringSliceVar(&o.formats, "format", nil, "Output formats (dot, svg, json, png, pdf)")
	cmd.Flags().StringVar(&o.layout, "layout", "", "SVG layout (layered, circular, force)")
	cmd.Flags().BoolVar(&o.archive, "archive", false, "Save the trace archive")
	cmd.Flags().BoolVar(&o.model, "model", false, "Also render the full model including latent variables")
}

func (o *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = o.dir
	}
	if flags.Changed("format") {
		cfg.Output.Formats = o.formats
	}
	if flags.Changed("layout") {
		cfg.Output.Layout = o.layout
	}
	if flags.Changed("archive") {
		cfg.Output.Archive = o.archive
	}
	if flags.Changed("model") {
		cfg.Output.Model = o.model
	}
}

func newRunCmd(global *globalOptions) *cobra.Command {
	var (
		sc     scenarioFlags
		out    outputFlags
		draws  int
		chains int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample a scenario, print its report and write diagrams",
		Example: `  bowtie run
  bowtie run --scenario logictest --draws 5000
  bowtie run --scenario-file airprox.yaml --format dot,svg,png --archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("draws") {
				cfg.Sampling.Draws = draws
			}
			if flags.Changed("chains") {
				cfg.Sampling.Chains = chains
			}
			if flags.Changed("seed") {
				cfg.Sampling.Seed = seed
			}
			out.apply(cmd, cfg)

			scenario, err := sc.resolve()
			if err != nil {
				return err
			}
			logger := global.logger(cmd, cfg)
			runner, err := pipeline.New(cfg,
				pipeline.WithLogger(logger),
				pipeline.WithMetrics(metrics.NewRegistry()))
			if err != nil {
				return err
			}

			res, err := runner.Execute(cmd.Context(), scenario, cmd.OutOrStdout())
			if err != nil {
				logger.Error("run failed", logging.Bowtie(scenario.Name), logging.Error(err))
				return err
			}
			logger.Info("run complete",
				logging.Bowtie(scenario.Name),
				logging.RunID(res.Trace.RunID),
				logging.Count(len(res.Files)))
			return nil
		},
	}

	sc.register(cmd)
	out.register(cmd)
	cmd.Flags().IntVarP(&draws, "draws", "n", 0, "Draws per chain")
	cmd.Flags().IntVar(&chains, "chains", 0, "Number of chains")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Base random seed")
	return cmd
}
