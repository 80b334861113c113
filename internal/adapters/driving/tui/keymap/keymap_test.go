package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"k moves up", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Up},
		{"arrow moves down", tea.KeyMsg{Type: tea.KeyDown}, km.Down},
		{"enter submits", tea.KeyMsg{Type: tea.KeyEnter}, km.Submit},
		{"esc goes back", tea.KeyMsg{Type: tea.KeyEsc}, km.Back},
		{"esc cancels a batch", tea.KeyMsg{Type: tea.KeyEsc}, km.Cancel},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}

	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, km.Quit))
}

func TestHelpGroups(t *testing.T) {
	km := DefaultKeyMap()
	assert.Len(t, km.ShortHelp(), 2)
	assert.Equal(t, "new query", km.ResultsHelp()[0].Help().Desc)
	assert.Equal(t, "stop", km.BatchHelp()[0].Help().Desc)
	assert.Len(t, km.FullHelp(), 3)
}
