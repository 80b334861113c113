package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenu_Navigation(t *testing.T) {
	v := NewView(nil, nil)
	assert.Equal(t, "Initialising...", v.View())
	v.SetDimensions(80, 24)

	v.Update(runes("k"))
	assert.Equal(t, 0, v.Selected())
	v.Update(runes("j"))
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.Selected())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewStats}, cmd())

	for range 10 {
		v.Update(runes("j"))
	}
	assert.Equal(t, 4, v.Selected())
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestMenu_Keys(t *testing.T) {
	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"1", messages.ViewChanged{View: messages.ViewLookup}},
		{"2", messages.ViewChanged{View: messages.ViewFind}},
		{"?", messages.ViewChanged{View: messages.ViewHelp}},
		{"5", tea.Quit()},
		{"q", tea.Quit()},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := NewView(nil, nil)
			_, cmd := v.Update(runes(tt.key))
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd())
		})
	}

	t.Run("out of range digit", func(t *testing.T) {
		v := NewView(nil, nil)
		_, cmd := v.Update(runes("9"))
		assert.Nil(t, cmd)
		assert.Equal(t, 0, v.Selected())
	})
}

func TestMenu_View(t *testing.T) {
	v := NewView(nil, nil)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	out := v.View()
	for _, label := range []string{"stockthemes", "1. Lookup ticker", "2. Find stocks by theme", "3. Stats", "4. Help", "5. Quit", "key bindings"} {
		assert.Contains(t, out, label)
	}
}
