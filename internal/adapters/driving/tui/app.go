package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/views/stats"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView   *menu.View
	lookupView *search.View
	findView   *search.View
	statsView  *stats.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s, km),
		lookupView:  search.NewView(search.ModeLookup, s, km, ports.Query),
		findView:    search.NewView(search.ModeFind, s, km, ports.Query),
		statsView:   stats.NewView(s, ports.Query),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.lookupView.WithContext(ctx)
	a.findView.WithContext(ctx)
	a.statsView.WithContext(ctx)
	return a
}

// SetMinConfidence hides themes below minConfidence in lookups and searches.
func (a *App) SetMinConfidence(minConfidence float64) {
	a.lookupView.SetMinConfidence(minConfidence)
	a.findView.SetMinConfidence(minConfidence)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("stockthemes")
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewLookup:
			a.lookupView, cmd = a.lookupView.Update(msg)
		case messages.ViewFind:
			a.findView, cmd = a.findView.Update(msg)
		case messages.ViewStats:
			a.statsView, cmd = a.statsView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewLookup:
			a.lookupView.Reset()
			return a, a.lookupView.Init()
		case messages.ViewFind:
			a.findView.Reset()
			return a, a.findView.Init()
		case messages.ViewStats:
			return a, a.statsView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.LookupRequested:
		a.currentView = messages.ViewLookup
		a.lookupView.Reset()
		return a, a.lookupView.Submit(msg.Ticker)

	case messages.LookupCompleted:
		a.lookupView, cmd = a.lookupView.Update(msg)
		a.err = a.lookupView.Err()
		return a, cmd

	case messages.FindCompleted:
		a.findView, cmd = a.findView.Update(msg)
		a.err = a.findView.Err()
		return a, cmd

	case messages.StatsLoaded:
		a.statsView, cmd = a.statsView.Update(msg)
		a.err = a.statsView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		switch a.currentView {
		case messages.ViewLookup:
			a.lookupView, cmd = a.lookupView.Update(msg)
		case messages.ViewFind:
			a.findView, cmd = a.findView.Update(msg)
		case messages.ViewMenu, messages.ViewStats, messages.ViewHelp:
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink) to the active input
	switch a.currentView {
	case messages.ViewLookup:
		a.lookupView, cmd = a.lookupView.Update(msg)
	case messages.ViewFind:
		a.findView, cmd = a.findView.Update(msg)
	case messages.ViewMenu, messages.ViewStats, messages.ViewHelp:
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewLookup:
		return a.lookupView.View()
	case messages.ViewFind:
		return a.findView.View()
	case messages.ViewStats:
		return a.statsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to menu
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Lookup / Find:
  (type)      Ticker or theme
  enter       Run query
  n           New query
  j/k, ↑/↓    Navigate results
  enter       Open the selected stock (Find)

Stats:
  j/k, ↑/↓    Scroll distribution
  r           Refresh

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// LookupView returns the ticker lookup view.
func (a *App) LookupView() *search.View {
	return a.lookupView
}

// FindView returns the theme search view.
func (a *App) FindView() *search.View {
	return a.findView
}

// StatsView returns the statistics view.
func (a *App) StatsView() *stats.View {
	return a.statsView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.lookupView.SetDimensions(width, height)
	a.findView.SetDimensions(width, height)
	a.statsView.SetDimensions(width, height)
}
