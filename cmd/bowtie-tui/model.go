package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-bowtie/pkg/pipeline"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
)

type view int

const (
	overviewView view = iota
	barriersView
	likelihoodView
	variablesView
	structureView
	viewCount
)

var viewNames = []string{"Overview", "Barriers", "Likelihoods", "Variables", "Structure"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Resample key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Resample: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resample with next seed"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Resample, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Resample},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	runner      *pipeline.Runner
	scenario    *scenario.Scenario
	result      *pipeline.Result
	seed        int64
	currentView view
	barriers    table.Model
	likelihoods table.Model
	variables   table.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	running     bool
	elapsed     time.Duration
	message     string
	messageErr  bool
}

// resultMsg carries a finished sampling run back to Update.
type resultMsg struct {
	result  *pipeline.Result
	elapsed time.Duration
	err     error
}

func sampleCmd(runner *pipeline.Runner, sc *scenario.Scenario, seed int64) tea.Cmd {
	return func() tea.Msg {
		opts := runner.Config().SamplerOptions()
		opts.Seed = seed
		start := time.Now()
		res, err := runner.RunWith(context.Background(), sc, opts)
		return resultMsg{result: res, elapsed: time.Since(start), err: err}
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(runner *pipeline.Runner, sc *scenario.Scenario, seed int64) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		runner:   runner,
		scenario: sc,
		seed:     seed,
		barriers: newTable([]table.Column{
			{Title: "Barrier", Width: 28},
			{Title: "Role", Width: 22},
			{Title: "Effectiveness", Width: 14},
			{Title: "Cumulative", Width: 12},
		}),
		likelihoods: newTable([]table.Column{
			{Title: "Node", Width: 30},
			{Title: "Role", Width: 14},
			{Title: "Likelihood", Width: 12},
		}),
		variables: newTable([]table.Column{
			{Title: "Variable", Width: 16},
			{Title: "Mean", Width: 10},
			{Title: "SD", Width: 10},
			{Title: "3%", Width: 10},
			{Title: "97%", Width: 10},
		}),
		spinner: sp,
		help:    help.New(),
		keys:    keys,
	}
}

// withResult loads res into the tables.
func (m model) withResult(res *pipeline.Result) model {
	m.result = res
	m.running = false

	rows := make([]table.Row, 0, len(res.Report.Barriers))
	for _, b := range res.Report.Barriers {
		rows = append(rows, table.Row{b.Name, b.Role.Title(), f4(b.Effectiveness), f4(b.Cumulative)})
	}
	m.barriers.SetRows(rows)

	rows = make([]table.Row, 0, len(res.Report.Causes)+len(res.Report.Consequences)+1)
	for _, l := range res.Report.Causes {
		rows = append(rows, table.Row{l.Name, l.Role.Title(), f4(l.Value)})
	}
	for _, l := range res.Report.Consequences {
		rows = append(rows, table.Row{l.Name, l.Role.Title(), f4(l.Value)})
	}
	rows = append(rows, table.Row{"Sum over final nodes", "", f4(res.Report.ConsequenceSum)})
	m.likelihoods.SetRows(rows)

	rows = make([]table.Row, 0, len(res.Summaries))
	for _, s := range res.Summaries {
		rows = append(rows, table.Row{s.Name, f4(s.Mean), f4(s.SD), f4(s.Q03), f4(s.Q97)})
	}
	m.variables.SetRows(rows)
	return m
}

func f4(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func (m model) Init() tea.Cmd {
	if m.running {
		return tea.Batch(m.spinner.Tick, sampleCmd(m.runner, m.scenario, m.seed))
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case resultMsg:
		if msg.err != nil {
			m.running = false
			m.message = fmt.Sprintf("Sampling failed: %v", msg.err)
			m.messageErr = true
			return m, nil
		}
		m = m.withResult(msg.result)
		m.elapsed = msg.elapsed
		m.message = fmt.Sprintf("Sampled seed %d in %s", m.seed, msg.elapsed.Round(time.Millisecond))
		m.messageErr = false
		return m, nil

	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount
			return m, nil

		case key.Matches(msg, m.keys.Resample):
			if m.running {
				return m, nil
			}
			m.seed++
			m.running = true
			m.message = ""
			return m, tea.Batch(m.spinner.Tick, sampleCmd(m.runner, m.scenario, m.seed))
		}
	}

	// Update focused table
	switch m.currentView {
	case barriersView:
		m.barriers, cmd = m.barriers.Update(msg)
		cmds = append(cmds, cmd)
	case likelihoodView:
		m.likelihoods, cmd = m.likelihoods.Update(msg)
		cmds = append(cmds, cmd)
	case variablesView:
		m.variables, cmd = m.variables.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
