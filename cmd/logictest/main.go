// Command logictest samples the single-barrier switch model (2000 draws per
// chain from seed 1000) so the barrier gate can be checked by eye: about
// 27% of the constant signal should be stopped. It takes no flags.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
	"github.com/dd0wney/cluso-bowtie/pkg/pipeline"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
)

func main() {
	logger := logging.DefaultLogger().With(logging.Component("logictest"))
	if err := run(logger); err != nil {
		logger.Error("logictest run failed", logging.Error(err))
		os.Exit(1)
	}
}

func run(logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := scenario.LogicTest()
	if err != nil {
		return err
	}
	runner, err := pipeline.New(config.Default(),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics.DefaultRegistry()))
	if err != nil {
		return err
	}

	res, err := runner.Execute(ctx, sc, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("diagram written",
		logging.Bowtie(sc.Name),
		logging.RunID(res.Trace.RunID),
		logging.Count(len(res.Files)),
		logging.Path(runner.Config().Output.Dir))
	return nil
}
