package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		count   int
		want    string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"loading", StateLoading, "", 0, "Loading..."},
		{"error", StateError, "boom", 0, "Error: boom"},
		{"results", StateResults, "", 7, "7 results"},
		{"running", StateRunning, "3/10 tickers", 0, "3/10 tickers"},
		{"running default", StateRunning, "", 0, "Running..."},
		{"ready message", StateReady, "type a ticker", 0, "type a ticker"},
		{"error without message", StateError, "", 0, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBar(nil, nil)
			b.SetWidth(120)
			b.SetState(tt.state)
			b.SetMessage(tt.message)
			b.SetResultCount(tt.count)
			assert.Contains(t, b.View(), tt.want)
		})
	}
}

func TestBar_Clear(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetState(StateError)
	b.SetMessage("x")
	b.SetResultCount(2)
	b.Clear()
	assert.Equal(t, StateReady, b.State())
	assert.Empty(t, b.Message())
	assert.Zero(t, b.ResultCount())
}

func TestBar_Hints(t *testing.T) {
	b := NewBar(nil, nil)
	b.SetWidth(120)
	assert.Contains(t, b.View(), "q: quit")

	b.SetState(StateResults)
	b.SetResultCount(1)
	assert.Contains(t, b.View(), "n: new query")

	b.SetState(StateRunning)
	assert.Contains(t, b.View(), "ctrl+c: stop")
}
