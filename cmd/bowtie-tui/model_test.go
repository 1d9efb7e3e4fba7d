package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-bowtie/pkg/config"
	"github.com/dd0wney/cluso-bowtie/pkg/pipeline"
	"github.com/dd0wney/cluso-bowtie/pkg/scenario"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	cfg := config.Default()
	cfg.Sampling.Draws = 100
	cfg.Sampling.Chains = 2
	runner, err := pipeline.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := scenario.LogicTest()
	if err != nil {
		t.Fatal(err)
	}
	m := initialModel(runner, sc, cfg.Sampling.Seed)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(model)
}

func sampled(t *testing.T, m model) model {
	t.Helper()
	msg := sampleCmd(m.runner, m.scenario, m.seed)()
	updated, _ := m.Update(msg)
	return updated.(model)
}

func TestSamplingFillsViews(t *testing.T) {
	m := sampled(t, newTestModel(t))
	if m.result == nil {
		t.Fatalf("no result, message %q", m.message)
	}
	if m.messageErr {
		t.Fatalf("unexpected error message %q", m.message)
	}

	view := m.View()
	if !strings.Contains(view, scenario.LogicTestBarrier) {
		t.Errorf("overview should list the barrier:\n%s", view)
	}
	if got := len(m.barriers.Rows()); got != 1 {
		t.Errorf("barrier rows = %d, want 1", got)
	}
	// cause, top event and the sum row
	if got := len(m.likelihoods.Rows()); got != 3 {
		t.Errorf("likelihood rows = %d, want 3", got)
	}
}

func TestTabCyclesViews(t *testing.T) {
	m := sampled(t, newTestModel(t))
	tab := tea.KeyMsg{Type: tea.KeyTab}

	for want := 1; want <= int(viewCount); want++ {
		updated, _ := m.Update(tab)
		m = updated.(model)
		if int(m.currentView) != want%int(viewCount) {
			t.Fatalf("view = %d, want %d", m.currentView, want%int(viewCount))
		}
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(model)
	if m.currentView != structureView {
		t.Errorf("shift+tab from overview = %d, want structure", m.currentView)
	}
	if !strings.Contains(m.View(), "└─→ "+scenario.LogicTestTopEvent) {
		t.Errorf("structure view should show the barrier edge:\n%s", m.View())
	}
}

func TestResampleAdvancesSeed(t *testing.T) {
	m := sampled(t, newTestModel(t))
	seed := m.seed

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(model)
	if m.seed != seed+1 || !m.running || cmd == nil {
		t.Fatalf("seed=%d running=%v cmd=%v", m.seed, m.running, cmd != nil)
	}

	// a second press while sampling is ignored
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if updated.(model).seed != seed+1 {
		t.Error("resample while running should be ignored")
	}

	m = sampled(t, m)
	if m.running || m.result.Trace.Seed != seed+1 {
		t.Errorf("running=%v trace seed=%d", m.running, m.result.Trace.Seed)
	}
}

func TestQuit(t *testing.T) {
	_, cmd := newTestModel(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBar(t *testing.T) {
	if got := bar(1); strings.Count(got, "█") != barWidth {
		t.Errorf("bar(1) = %q", got)
	}
	if got := bar(0); strings.Count(got, "░") != barWidth {
		t.Errorf("bar(0) = %q", got)
	}
}
