// Package search provides the ticker lookup and theme search views for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// Mode selects what the typed query means.
type Mode int

const (
	// ModeLookup treats the query as a ticker.
	ModeLookup Mode = iota
	// ModeFind treats the query as a theme name or synonym.
	ModeFind
)

// DefaultFindLimit caps the stocks listed for a theme.
const DefaultFindLimit = 50

// View is a single-query screen: an input line, a result list and a status bar.
type View struct {
	mode      Mode
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	queryService  driving.QueryService
	ctx           context.Context
	minConfidence float64

	company    *domain.CompanyThemes
	theme      string
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a query view in the given mode.
func NewView(mode Mode, s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	label, placeholder := "Ticker", "e.g. NVDA"
	if mode == ModeFind {
		label, placeholder = "Theme", "e.g. artificial intelligence"
	}

	return &View{
		mode:         mode,
		styles:       s,
		keymap:       km,
		input:        input.NewQueryInput(s, label, placeholder),
		list:         list.NewResultList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetMinConfidence filters out themes below min.
func (v *View) SetMinConfidence(minConfidence float64) {
	v.minConfidence = minConfidence
}

func (v *View) Init() tea.Cmd { return v.input.Init() }

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.LookupCompleted:
		v.handleLookupCompleted(msg)
		return v, nil

	case messages.FindCompleted:
		v.handleFindCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	}
	if v.focusInput {
		return v.typing(msg)
	}
	return v, v.browsing(msg)
}

// typing edits the query until Enter submits a non-blank value.
func (v *View) typing(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return v, nil
	}
	v.statusbar.SetState(status.StateLoading)
	v.focusInput = false
	v.input.Blur()
	return v, v.Submit(query)
}

// browsing moves through results. Enter on a found stock opens its lookup.
func (v *View) browsing(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEnter:
		if row := v.list.SelectedRow(); v.mode == ModeFind && row != nil {
			ticker := row.Key
			return func() tea.Msg { return messages.LookupRequested{Ticker: ticker} }
		}
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v.input.Focus()
	}
	return nil
}

// Submit runs query against the query service.
func (v *View) Submit(query string) tea.Cmd {
	v.input.SetValue(query)
	minConfidence := v.minConfidence

	if v.mode == ModeFind {
		return func() tea.Msg {
			if v.queryService == nil {
				return messages.ErrorOccurred{Err: messages.ErrNoQueryService}
			}
			stocks, err := v.queryService.FindStocks(v.ctx, query, minConfidence, DefaultFindLimit)
			return messages.FindCompleted{Theme: query, Stocks: stocks, Err: err}
		}
	}

	return func() tea.Msg {
		if v.queryService == nil {
			return messages.ErrorOccurred{Err: messages.ErrNoQueryService}
		}
		company, err := v.queryService.Lookup(v.ctx, query, minConfidence)
		return messages.LookupCompleted{Company: company, Err: err}
	}
}

func (v *View) handleLookupCompleted(msg messages.LookupCompleted) {
	if msg.Err != nil {
		if errors.Is(msg.Err, domain.ErrNotFound) {
			msg.Err = fmt.Errorf("%s has not been extracted yet", strings.ToUpper(v.input.Value()))
		}
		v.company = nil
		v.list.SetRows(nil)
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.company = msg.Company
	var rows []list.Row
	if msg.Company != nil {
		rows = list.ThemeRows(msg.Company.Themes)
	}
	v.showRows(rows)
}

func (v *View) handleFindCompleted(msg messages.FindCompleted) {
	if msg.Err != nil {
		v.list.SetRows(nil)
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.theme = msg.Theme
	v.showRows(list.StockRows(msg.Stocks))
}

func (v *View) showRows(rows []list.Row) {
	v.list.SetRows(rows)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(rows))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "Lookup ticker"
	if v.mode == ModeFind {
		title = "Find stocks by theme"
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render(title), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if header := v.renderHeader(); header != "" {
		sections = append(sections, header, "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderHeader() string {
	if v.mode == ModeLookup && v.company != nil {
		p := v.company.Profile
		line := v.styles.Ticker.Render(p.Ticker) + "  " + v.styles.Normal.Render(p.Name)
		var meta []string
		for _, s := range []string{p.Sector, p.Industry} {
			if s != "" {
				meta = append(meta, s)
			}
		}
		if len(meta) > 0 {
			line += "\n" + v.styles.Muted.Render(strings.Join(meta, " / "))
		}
		return line
	}
	if v.mode == ModeFind && v.theme != "" && v.err == nil {
		return v.styles.Subtitle.Render("Stocks with theme: " + v.theme)
	}
	return ""
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-12) // header, input, company line, status
	v.statusbar.SetWidth(width)
}

func (v *View) Ready() bool { return v.ready }

func (v *View) Query() string { return v.input.Value() }

func (v *View) Rows() []list.Row { return v.list.Rows() }

func (v *View) SelectedIndex() int { return v.list.Selected() }

// Company is the company shown by the last successful lookup.
func (v *View) Company() *domain.CompanyThemes { return v.company }

func (v *View) Err() error { return v.err }

func (v *View) InputFocused() bool { return v.focusInput }

// Reset clears results and returns focus to the query input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetRows(nil)
	v.company = nil
	v.theme = ""
	v.err = nil
	v.statusbar.Clear()
}
