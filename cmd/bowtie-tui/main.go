// Command bowtie-tui browses a bow-tie run interactively. With an archive
// argument it shows that saved trace; otherwise it samples the airprox
// scenario and can resample with new seeds.
package main

import (
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/pipeline"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

func main() {
	runner, err := pipeline.New(config.Default())
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}

	var m model
	if len(os.Args) > 1 {
		tr, err := trace.OpenArchive(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to open archive: %v", err)
		}
		sc, err := scenario.Builtins().Get(tr.Model)
		if err != nil {
			log.Fatalf("Archive model: %v", err)
		}
		res, err := runner.Analyze(sc, tr)
		if err != nil {
			log.Fatalf("Failed to analyse archive: %v", err)
		}
		m = initialModel(runner, sc, tr.Seed)
		m = m.withResult(res)
	} else {
		sc, err := scenario.Airprox()
		if err != nil {
			log.Fatalf("Failed to build scenario: %v", err)
		}
		m = initialModel(runner, sc, runner.Config().Sampling.Seed)
		m.running = true
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
