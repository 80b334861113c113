package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestBatchModel_Progress(t *testing.T) {
	m := NewBatchModel(nil, 3, nil)
	assert.NotNil(t, m.Init())

	m.Update(messages.BatchProgressed{Progress: domain.BatchProgress{Ticker: "AAPL", Completed: 1, Total: 3, Themes: 4}})
	m.Update(messages.BatchProgressed{Progress: domain.BatchProgress{Ticker: "ZZZZ", Completed: 2, Total: 3, Err: errors.New("not found")}})
	m.Update(messages.BatchProgressed{Progress: domain.BatchProgress{Ticker: "MSFT", Completed: 3, Total: 3}})

	assert.Equal(t, 3, m.Completed())
	view := m.View()
	assert.Contains(t, view, "3/3")
	assert.Contains(t, view, "failed 1  empty 1")
	assert.Contains(t, view, "4 themes")
	assert.Contains(t, view, "not found")
	assert.Contains(t, view, "no themes")
	assert.Contains(t, view, "ctrl+c: stop")
}

func TestBatchModel_RecentIsBounded(t *testing.T) {
	m := NewBatchModel(nil, 20, nil)
	for i := range 20 {
		m.Update(messages.BatchProgressed{Progress: domain.BatchProgress{Ticker: "T", Completed: i + 1, Themes: 1}})
	}
	assert.Len(t, m.recent, recentLimit)
}

func TestBatchModel_CancelAndFinish(t *testing.T) {
	cancelled := 0
	m := NewBatchModel(nil, 2, func() { cancelled++ })

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, cancelled)
	assert.Contains(t, m.View(), "Stopping")

	report := &domain.BatchReport{Total: 2, Skipped: 2}
	_, cmd := m.Update(messages.BatchFinished{Report: report, Err: context.Canceled})
	require.NotNil(t, cmd)
	assert.True(t, m.Done())
	assert.Empty(t, m.View())

	got, err := m.Report()
	assert.Equal(t, report, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch_MissingService(t *testing.T) {
	_, err := RunBatch(context.Background(), nil, []string{"AAPL"}, domain.BatchOptions{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrMissingBatchService)
}
