// Package menu is the landing view of the theme browser.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. An entry without a target view quits.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

var defaultItems = []Item{
	{Label: "Lookup ticker", Hint: "stored themes of one stock", View: messages.ViewLookup},
	{Label: "Find stocks by theme", Hint: "stocks carrying a theme, by confidence", View: messages.ViewFind},
	{Label: "Stats", Hint: "store counts and theme distribution", View: messages.ViewStats},
	{Label: "Help", Hint: "key bindings", View: messages.ViewHelp},
	{Label: "Quit", Quit: true},
}

// View lists the items and emits ViewChanged for the chosen one. Items can
// also be picked by their number.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item
	cursor int
	ready  bool
}

func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{styles: s, keys: km, items: defaultItems}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.ready = true
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.cursor = min(v.cursor+1, len(v.items)-1)
	case key.Matches(msg, v.keys.Submit):
		return v.choose(v.cursor)
	case key.Matches(msg, v.keys.Help):
		return changeTo(messages.ViewHelp)
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(v.items) {
			v.cursor = int(s[0] - '1')
			return v.choose(v.cursor)
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return changeTo(item.View)
}

func changeTo(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("stockthemes"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Investment themes by stock"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.cursor {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hint != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] move  [enter/1-5] select  [?] help  [q] quit"))
	return b.String()
}

// SetDimensions marks the view ready. The menu does not depend on size.
func (v *View) SetDimensions(_, _ int) {
	v.ready = true
}

// Selected is the cursor index.
func (v *View) Selected() int {
	return v.cursor
}
