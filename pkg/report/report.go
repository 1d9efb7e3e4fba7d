// Package report prints analysis results as terminal tables and JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-bowtie/pkg/analysis"
	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/trace"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	numberStyle = cellStyle.Align(lipgloss.Right)

	borderColor = lipgloss.Color("#00FFFF")
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

func f4(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// BarrierTable lists both effectiveness figures for every barrier.
func BarrierTable(r *analysis.Report) string {
	t := newTable("Barrier", "Role", "Effectiveness", "Cumulative")
	for _, b := range r.Barriers {
		t.Row(b.Name, b.Role.Title(), f4(b.Effectiveness), f4(b.Cumulative))
	}
	return t.String()
}

// LikelihoodTable lists causes, consequences and the top event.
func LikelihoodTable(r *analysis.Report) string {
	t := newTable("Node", "Role", "Likelihood")
	for _, l := range r.Causes {
		t.Row(l.Name, l.Role.Title(), f4(l.Value))
	}
	for _, l := range r.Consequences {
		t.Row(l.Name, l.Role.Title(), f4(l.Value))
	}
	t.Row("Sum over final nodes", "", f4(r.ConsequenceSum))
	return t.String()
}

// SummaryTable prints posterior-style summaries of trace variables.
func SummaryTable(summaries []trace.Summary) string {
	t := newTable("Variable", "Mean", "SD", "Min", "3%", "97%", "Max")
	for _, s := range summaries {
		t.Row(s.Name, f4(s.Mean), f4(s.SD), f4(s.Min), f4(s.Q03), f4(s.Q97), f4(s.Max))
	}
	return t.String()
}

// ModelTable lists every node with its role, parents and formula.
func ModelTable(bt *bowtie.BowTie) string {
	t := newTable("Node", "Role", "Parents", "Formula").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, n := range bt.Nodes() {
		t.Row(n.Name, n.Role.Title(), strings.Join(n.Parents, ", "), n.Formula())
	}
	return t.String()
}

// Write prints a titled report. A nil report prints only the trace summary.
func Write(w io.Writer, title string, r *analysis.Report, summaries []trace.Summary) error {
	var sections []string
	sections = append(sections, titleStyle.Render(title))
	if r != nil {
		sections = append(sections,
			fmt.Sprintf("run %s, %d samples", r.RunID, r.TotalSamples),
			BarrierTable(r),
			LikelihoodTable(r))
	}
	if len(summaries) > 0 {
		sections = append(sections, SummaryTable(summaries))
	}
	_, err := io.WriteString(w, strings.Join(sections, "\n")+"\n")
	return err
}

// Document is the JSON report.
type Document struct {
	Report  *analysis.Report `json:"report,omitempty"`
	Summary []trace.Summary  `json:"summary,omitempty"`
}

// WriteJSON writes the report and summaries as indented JSON.
func WriteJSON(w io.Writer, r *analysis.Report, summaries []trace.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{Report: r, Summary: summaries})
}
