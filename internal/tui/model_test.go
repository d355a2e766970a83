package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/plo-sentinel/internal/telemetry"
)

func TestModelAppendsSnapshotToLog(t *testing.T) {
	updates := make(chan telemetry.Snapshot, 1)
	m := NewModel(updates, nil)

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)

	snap := telemetry.Snapshot{State: "CALCULATING", Action: "raise", Equity: 0.62, Confidence: 0.8, Reasoning: "flop equity 62%, raise gate 0.50"}
	updated, cmd := m.Update(snapshotMsg(snap))
	updatedModel := updated.(*Model)
	require.NotNil(t, cmd)

	assert.Equal(t, "CALCULATING", updatedModel.snapshot.State)
	require.Len(t, updatedModel.log, 1)
	assert.Contains(t, updatedModel.log[0], "RAISE")
}

func TestModelQuitsOnCtrlC(t *testing.T) {
	m := NewModel(nil, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModelRecordsPollError(t *testing.T) {
	m := NewModel(nil, nil)
	_, cmd := m.Update(errMsg{err: assert.AnError})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.lastErr, assert.AnError)
}

func TestModelTruncatesLogHistory(t *testing.T) {
	m := NewModel(nil, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	for i := 0; i < maxLogLines+10; i++ {
		m.Update(snapshotMsg(telemetry.Snapshot{State: "WAITING"}))
	}
	assert.LessOrEqual(t, len(m.log), maxLogLines)
}

func TestModelViewRendersOnceSized(t *testing.T) {
	m := NewModel(nil, nil)
	assert.Equal(t, "connecting...", m.View())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	out := m.View()
	assert.Contains(t, out, "plo-sentinel dashboard")
}
