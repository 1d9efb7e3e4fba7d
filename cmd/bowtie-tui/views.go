package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	graphBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

const barWidth = 30

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Bow-tie risk: " + m.scenario.Name))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch {
	case m.running:
		s.WriteString(contentStyle.Render(m.spinner.View() + fmt.Sprintf(" Sampling seed %d...", m.seed)))
	case m.result == nil:
		s.WriteString(contentStyle.Render("No results yet. Press 'r' to sample."))
	default:
		switch m.currentView {
		case overviewView:
			s.WriteString(m.renderOverview())
		case barriersView:
			s.WriteString(m.renderTable("Barrier Effectiveness", m.barriers))
		case likelihoodView:
			s.WriteString(m.renderTable("Cause and Consequence Likelihoods", m.likelihoods))
		case variablesView:
			s.WriteString(m.renderTable("Node Summaries", m.variables))
		case structureView:
			s.WriteString(m.renderStructure())
		}
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var renderedTabs []string
	for i, tab := range viewNames {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderOverview() string {
	tr := m.result.Trace
	rep := m.result.Report

	statsContent := fmt.Sprintf(`Run
━━━━━━━━━━━━━━━
Run ID:    %s
Chains:    %d
Draws:     %d
Seed:      %d
Samples:   %d
Elapsed:   %s

Outcome
━━━━━━━━━━━━━━━
Consequence sum: %.4f`,
		shortID(tr.RunID),
		tr.Chains,
		tr.Draws,
		tr.Seed,
		rep.TotalSamples,
		m.elapsed.Round(time.Millisecond),
		rep.ConsequenceSum,
	)

	var bars strings.Builder
	bars.WriteString("Barrier effectiveness\n━━━━━━━━━━━━━━━\n")
	for _, b := range rep.Barriers {
		bars.WriteString(fmt.Sprintf("%-26s %s %.4f\n", b.Name, bar(b.Effectiveness), b.Effectiveness))
	}

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			statsBoxStyle.Render(statsContent),
			statsBoxStyle.Render(strings.TrimRight(bars.String(), "\n"))),
	)
}

func (m model) renderTable(title string, t table.Model) string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(t.View())

	return contentStyle.Render(s.String())
}

func (m model) renderStructure() string {
	d := m.result.Diagram

	var s strings.Builder
	s.WriteString(fmt.Sprintf("%d nodes, %d edges\n\n", len(d.Nodes), len(d.Edges)))
	for _, n := range d.Nodes {
		s.WriteString(fmt.Sprintf("◉ %s [%s]\n", n.ID, n.Role.Title()))
		for _, e := range d.Edges {
			if e.From == n.ID {
				s.WriteString(fmt.Sprintf("  └─→ %s\n", e.To))
			}
		}
	}

	var out strings.Builder
	out.WriteString(headerStyle.Render("Bow-tie Structure"))
	out.WriteString("\n\n")
	out.WriteString(graphBoxStyle.Render(strings.TrimRight(s.String(), "\n")))
	return contentStyle.Render(out.String())
}

// bar draws v in [0, 1] as a fixed-width block bar.
func bar(v float64) string {
	n := int(v*barWidth + 0.5)
	n = max(0, min(barWidth, n))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
