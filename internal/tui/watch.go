// Package tui renders a live progress view for a running analysis.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"lectio/internal/analysis"
)

const pollInterval = 200 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	watchDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	watchBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
)

type pollMsg struct {
	job *analysis.Job
	err error
}

type tickMsg time.Time

// watchModel polls one job until it reaches a terminal state.
type watchModel struct {
	orch  *analysis.Orchestrator
	jobID string

	job       *analysis.Job
	err       error
	tickCount int
	width     int
}

func newWatchModel(orch *analysis.Orchestrator, jobID string) watchModel {
	return watchModel{orch: orch, jobID: jobID, width: 80}
}

func (m watchModel) poll() tea.Msg {
	job, err := m.orch.Get(m.jobID)
	return pollMsg{job: job, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.poll, tick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.tickCount++
		return m, tea.Batch(m.poll, tick())

	case pollMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.job = msg.job
		if m.job.Status.Terminal() {
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

func (m watchModel) View() tea.View {
	v := tea.NewView("")
	v.SetContent(m.render())
	return v
}

func (m watchModel) render() string {
	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("Analyzing transcript") + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(watchErrStyle.Render("error: "+m.err.Error()) + "\n")
	case m.job == nil:
		b.WriteString(watchDimStyle.Render("waiting for job...") + "\n")
	default:
		frame := spinnerFrames[m.tickCount%len(spinnerFrames)]
		b.WriteString(fmt.Sprintf("%s %s  %s\n\n",
			frame,
			m.job.Status,
			watchDimStyle.Render(m.job.ID)))
		b.WriteString(progressBar(m.job.Progress, m.width) + "\n")
	}

	b.WriteString("\n" + watchDimStyle.Render("q to detach, analysis keeps running") + "\n")
	return b.String()
}

// progressBar renders `[████░░░░] 3/12` scaled to the terminal width.
func progressBar(p analysis.Progress, width int) string {
	barWidth := width - 12
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}

	filled := 0
	if p.Total > 0 {
		filled = p.Done * barWidth / p.Total
	}
	bar := watchBarStyle.Render(strings.Repeat("█", filled)) +
		watchDimStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("[%s] %d/%d", bar, p.Done, p.Total)
}

// Run blocks until the job finishes or the user detaches, then returns
// the latest snapshot so the caller can print the final report.
func Run(orch *analysis.Orchestrator, jobID string) (*analysis.Job, error) {
	p := tea.NewProgram(newWatchModel(orch, jobID))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(watchModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.job != nil {
		return m.job, nil
	}
	return orch.Get(jobID)
}
