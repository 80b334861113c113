// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups every binding. Views match with key.Matches and status
// bars render the Help of the bindings relevant to their state.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Back     key.Binding
	Submit   key.Binding
	Up       key.Binding
	Down     key.Binding
	NewQuery key.Binding

	// Open looks up the stock under the cursor in a theme search.
	Open key.Binding

	// Cancel stops a running batch. In-flight tickers still finish.
	Cancel key.Binding
}

func bind(helpKey, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:     bind("q", "quit", "q", "ctrl+c"),
		Help:     bind("?", "help", "?"),
		Back:     bind("esc", "back", "esc"),
		Submit:   bind("enter", "run", "enter"),
		Up:       bind("↑/k", "up", "up", "k"),
		Down:     bind("↓/j", "down", "down", "j"),
		NewQuery: bind("n", "new query", "n"),
		Open:     bind("enter", "lookup", "enter"),
		Cancel:   bind("ctrl+c", "stop", "ctrl+c", "esc", "q"),
	}
}

// ShortHelp is shown when nothing more specific applies.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ResultsHelp is shown under a non-empty result list.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewQuery, k.Up, k.Down, k.Back}
}

// BatchHelp is shown while a batch runs.
func (k *KeyMap) BatchHelp() []key.Binding {
	return []key.Binding{k.Cancel}
}

// FullHelp is the help view, one column per group.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Submit},
		{k.NewQuery, k.Open, k.Back},
		{k.Help, k.Quit},
	}
}
