package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/report"
	"github.com/dd0wney/cluso-bowtie/pkg/visualization"
)

func newInspectCmd() *cobra.Command {
	var (
		sc    scenarioFlags
		asDOT bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the structure of a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := sc.resolve()
			if err != nil {
				return err
			}
			bt := scenario.Model
			w := cmd.OutOrStdout()
			if asDOT {
				return visualization.WriteDOT(w, visualization.BuildModelDiagram(bt))
			}

			lines := []string{
				fmt.Sprintf("%s: %s", scenario.Name, scenario.Description),
				roleLine("Context", bt.ContextLabel()),
				roleLine(bowtie.RoleTopEvent.Title(), bt.TopEventName()),
				roleLine("Causes", bt.Causes()...),
				roleLine("Preventative barriers", bt.PreventativeBarriers()...),
				roleLine("Mitigation barriers", bt.MitigationBarriers()...),
				roleLine("Escalatory factors", bt.EscalatoryFactors()...),
				roleLine("Consequences", bt.Consequences()...),
			}
			for _, e := range scenario.RemoveEdges {
				lines = append(lines, fmt.Sprintf("Hidden edge: %s -> %s", e[0], e[1]))
			}
			if err := writeLines(w, lines); err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, report.ModelTable(bt))
			return err
		},
	}

	sc.register(cmd)
	cmd.Flags().BoolVar(&asDOT, "dot", false, "Print the full model diagram as DOT")
	return cmd
}

func roleLine(title string, names ...string) string {
	if len(names) == 0 || (len(names) == 1 && names[0] == "") {
		return title + ": -"
	}
	return title + ": " + strings.Join(names, ", ")
}
