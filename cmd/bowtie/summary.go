package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-bowtie/pkg/report"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

func newSummaryCmd() *cobra.Command {
	var (
		vars   []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "summary <archive>",
		Short: "Summarise the variables of a trace archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := trace.OpenArchive(args[0])
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			summaries, err := tr.SummarizeAll(vars...)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return report.WriteJSON(w, nil, summaries)
			}
			title := fmt.Sprintf("%s (run %s, %d chains x %d draws)", tr.Model, tr.RunID, tr.Chains, tr.Draws)
			return report.Write(w, title, nil, summaries)
		},
	}

	cmd.Flags().StringSliceVar(&vars, "var", nil, "Variables to summarise (default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

// writeLines prints one line per entry.
func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
