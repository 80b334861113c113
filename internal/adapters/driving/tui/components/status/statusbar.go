// Package status renders the one-line bar under the TUI views: state on
// the left, key hints for that state on the right.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
)

type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
	StateResults State = "results"
	StateRunning State = "running"
)

type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	width  int

	state   State
	message string
	count   int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keys: km, width: 80, state: StateReady}
}

// View pads between the two halves so the bar spans the full width.
func (b *Bar) View() string {
	left, right := b.left(), b.hints()
	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	st := b.styles
	switch b.state {
	case StateLoading:
		return st.Muted.Render("Loading...")
	case StateRunning:
		return st.Normal.Render(b.messageOr("Running..."))
	case StateError:
		if b.message == "" {
			return st.Error.Render("Error")
		}
		return st.Error.Render("Error: " + b.message)
	}
	if b.count > 0 {
		return st.Normal.Render(fmt.Sprintf("%d results", b.count))
	}
	return st.Muted.Render(b.messageOr("Ready"))
}

func (b *Bar) messageOr(fallback string) string {
	if b.message != "" {
		return b.message
	}
	return fallback
}

func (b *Bar) hints() string {
	bindings := b.keys.ShortHelp()
	switch {
	case b.state == StateRunning:
		bindings = b.keys.BatchHelp()
	case b.state == StateResults && b.count > 0:
		bindings = b.keys.ResultsHelp()
	}
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		parts[i] = hint(kb)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

func hint(kb key.Binding) string {
	h := kb.Help()
	return h.Key + ": " + h.Desc
}

func (b *Bar) SetState(s State) { b.state = s }
func (b *Bar) State() State { return b.state }
func (b *Bar) SetMessage(msg string) { b.message = msg }
func (b *Bar) Message() string { return b.message }
func (b *Bar) SetResultCount(n int) { b.count = n }
func (b *Bar) ResultCount() int { return b.count }
func (b *Bar) SetWidth(w int) { b.width = w }

// Clear returns to the ready state.
func (b *Bar) Clear() {
	b.state, b.message, b.count = StateReady, "", 0
}
