package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := scenario.Builtins()
			var lines []string
			for _, name := range registry.Names() {
				sc, err := registry.Get(name)
				if err != nil {
					return err
				}
				lines = append(lines, fmt.Sprintf("%-12s %s (%d nodes)", name, sc.Description, sc.Model.Len()))
			}
			return writeLines(cmd.OutOrStdout(), lines)
		},
	}
}
