package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"lectio/internal/analysis"
)

func TestWatchQuitsOnTerminalJob(t *testing.T) {
	m := newWatchModel(nil, "a1b2c3")

	next, cmd := m.Update(pollMsg{job: &analysis.Job{
		ID:     "a1b2c3",
		Status: analysis.StatusCompleted,
	}})
	if cmd == nil {
		t.Fatal("terminal poll should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd message = %T, want tea.QuitMsg", cmd())
	}

	wm := next.(watchModel)
	if wm.job == nil || wm.job.Status != analysis.StatusCompleted {
		t.Errorf("job snapshot = %+v", wm.job)
	}
}

func TestWatchKeepsPollingWhileProcessing(t *testing.T) {
	m := newWatchModel(nil, "a1b2c3")

	next, cmd := m.Update(pollMsg{job: &analysis.Job{
		ID:       "a1b2c3",
		Status:   analysis.StatusProcessing,
		Progress: analysis.Progress{Done: 2, Total: 8},
	}})
	if cmd != nil {
		t.Errorf("non-terminal poll should not emit a command")
	}

	wm := next.(watchModel)
	view := wm.render()
	if !strings.Contains(view, "processing") || !strings.Contains(view, "2/8") {
		t.Errorf("view missing progress:\n%s", view)
	}
}

func TestWatchQuitsOnKey(t *testing.T) {
	m := newWatchModel(nil, "a1b2c3")

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd message = %T, want tea.QuitMsg", cmd())
	}
}

func TestProgressBarBounds(t *testing.T) {
	out := progressBar(analysis.Progress{Done: 4, Total: 4}, 80)
	if !strings.Contains(out, "4/4") {
		t.Errorf("bar = %q", out)
	}
	// Zero total must not divide by zero.
	out = progressBar(analysis.Progress{}, 80)
	if !strings.Contains(out, "0/0") {
		t.Errorf("bar = %q", out)
	}
}
