// Package tui implements the read-only diagnostic dashboard: a
// bubbletea view of the engine's current state, equity, decision and
// mixed-strategy frequencies, polled from internal/telemetry. It never
// drives gameplay — there is no action input, only log-scroll and quit
// keys.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/plo-sentinel/internal/telemetry"
)

const maxLogLines = 200

// snapshotMsg carries one polled telemetry.Snapshot into Update.
type snapshotMsg telemetry.Snapshot

// errMsg carries a poll failure; the dashboard keeps the last good
// snapshot on screen and shows the error in the header instead of
// crashing the program.
type errMsg struct{ err error }

// Model is the dashboard's bubbletea model.
type Model struct {
	updates <-chan telemetry.Snapshot
	errs    <-chan error

	snapshot telemetry.Snapshot
	lastErr  error
	log      []string

	logViewport viewport.Model
	quitting    bool
	width       int
	height      int
}

// NewModel builds a dashboard fed by updates (successful polls) and errs
// (poll failures). Either channel may be nil.
func NewModel(updates <-chan telemetry.Snapshot, errs <-chan error) *Model {
	vp := viewport.New(10, 5)
	return &Model{updates: updates, errs: errs, logViewport: vp}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.waitForErr())
}

func (m *Model) waitForSnapshot() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-m.updates
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func (m *Model) waitForErr() tea.Cmd {
	if m.errs == nil {
		return nil
	}
	return func() tea.Msg {
		err, ok := <-m.errs
		if !ok {
			return nil
		}
		return errMsg{err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width - 2
		m.logViewport.Height = msg.Height - 10

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			m.logViewport.ScrollUp(1)
		case "down", "j":
			m.logViewport.ScrollDown(1)
		}

	case snapshotMsg:
		m.snapshot = telemetry.Snapshot(msg)
		m.lastErr = nil
		m.appendLog(telemetry.Snapshot(msg))
		return m, m.waitForSnapshot()

	case errMsg:
		m.lastErr = msg.err
		return m, m.waitForErr()
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) appendLog(s telemetry.Snapshot) {
	line := fmt.Sprintf("[%s] %s equity=%.1f%% conf=%.2f %s",
		s.State, strings.ToUpper(s.Action), s.Equity*100, s.Confidence, s.Reasoning)
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
	m.logViewport.SetContent(strings.Join(m.log, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "connecting..."
	}

	header := HeaderStyle.Render(" plo-sentinel dashboard ")
	if m.lastErr != nil {
		header += "  " + ErrorStyle.Render(fmt.Sprintf("poll error: %v", m.lastErr))
	}

	s := m.snapshot
	status := fmt.Sprintf(
		"%s %s\n%s %.1f%%   %s %.2f   %s %d\n%s %s\n%s %s\n",
		LabelStyle.Render("state"), StateStyle.Render(s.State),
		LabelStyle.Render("equity"), s.Equity*100,
		LabelStyle.Render("confidence"), s.Confidence,
		LabelStyle.Render("raise_amount"), s.RaiseAmount,
		LabelStyle.Render("action"), actionStyleFor(s.Action).Render(strings.ToUpper(s.Action)),
		LabelStyle.Render("reasoning"), s.Reasoning,
	)

	freqs := fmt.Sprintf("%s fold %.0f%% check %.0f%% call %.0f%% raise %.0f%% allin %.0f%%",
		LabelStyle.Render("frequencies"), s.FoldFreq*100, s.CheckFreq*100, s.CallFreq*100, s.RaiseFreq*100, s.AllinFreq*100)

	counters := fmt.Sprintf(
		"%s cycles=%d executed=%d dropped=%d timeouts=%d no_target=%d locked=%d crashed=%d",
		LabelStyle.Render("stats"), s.Cycles, s.Executed, s.Dropped, s.Timeouts, s.NoTarget, s.Locked, s.Crashed)

	logBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(m.logViewport.Height).
		Render(m.logViewport.View())

	help := LabelStyle.Render("↑↓ scroll log • q / ctrl+c to quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", status, freqs, counters, "", logBox, help)
}
