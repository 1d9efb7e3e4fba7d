package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
)

// globalOptions holds the persistent flags.
type globalOptions struct {
	cfgFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "bowtie",
		Short: "Bayesian bow-tie risk models",
		Long: `bowtie builds bow-tie risk models (causes, barriers, a top event and
consequences), samples them, and reports how effective each barrier is.

Commands:
  run        Sample a scenario, print its report and write diagrams
  render     Re-analyse a saved trace archive and write diagrams
  summary    Summarise the variables of a trace archive
  inspect    Show the structure of a scenario
  scenarios  List built-in scenarios`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "Run configuration file (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	root.AddCommand(
		newRunCmd(opts),
		newRenderCmd(opts),
		newSummaryCmd(),
		newInspectCmd(),
		newScenariosCmd(),
	)
	return root
}

// loadConfig reads --config, or the defaults when it is unset.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(o.cfgFile)
}

// logger writes JSON logs to the command's stderr.
func (o *globalOptions) logger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	return logging.NewJSONLogger(cmd.ErrOrStderr(), logging.ParseLevel(level)).
		With(logging.Component("bowtie"), logging.String("command", cmd.Name()))
}

// scenarioFlags selects a built-in scenario or a scenario file.
type scenarioFlags struct {
	name string
	file string
}

func (s *scenarioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.name, "scenario", "s", scenario.AirproxName, "Built-in scenario name")
	cmd.Flags().StringVarP(&s.file, "scenario-file", "f", "", "Scenario YAML file; overrides --scenario")
}

func (s *scenarioFlags) resolve() (*scenario.Scenario, error) {
	if s.file != "" {
		sc, err := scenario.LoadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("load scenario file: %w", err)
		}
		return sc, nil
	}
	return scenario.Builtins().Get(s.name)
}
