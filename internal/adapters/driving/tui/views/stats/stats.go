// Package stats shows store counts and the theme distribution.
package stats

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/table"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// View renders a summary of the result store.
type View struct {
	styles       *styles.Styles
	queryService driving.QueryService
	ctx          context.Context

	stats        domain.StoreStats
	distribution []domain.ThemeCount
	loaded       bool
	offset       int
	err          error

	width  int
	height int
	ready  bool
}

// NewView creates a stats view.
func NewView(s *styles.Styles, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		queryService: queryService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the stats.
func (v *View) Init() tea.Cmd {
	v.loaded = false
	v.offset = 0
	return v.load
}

func (v *View) load() tea.Msg {
	if v.queryService == nil {
		return messages.StatsLoaded{Err: messages.ErrNoQueryService}
	}
	stats, err := v.queryService.Stats(v.ctx)
	if err != nil {
		return messages.StatsLoaded{Err: err}
	}
	dist, err := v.queryService.Distribution(v.ctx)
	return messages.StatsLoaded{Stats: stats, Distribution: dist, Err: err}
}

// Update handles messages for the stats view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatsLoaded:
		v.loaded = true
		v.err = msg.Err
		if msg.Err == nil {
			v.stats = msg.Stats
			v.distribution = msg.Distribution
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "r":
			return v, v.Init()
		case "up", "k":
			if v.offset > 0 {
				v.offset--
			}
		case "down", "j":
			if v.offset < len(v.distribution)-1 {
				v.offset++
			}
		}
	}
	return v, nil
}

// View renders the stats.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Store statistics"), ""}

	switch {
	case !v.loaded:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	default:
		sections = append(sections, table.Stats(v.styles, v.stats), "")
		if len(v.distribution) == 0 {
			sections = append(sections, v.styles.Muted.Render("No themes stored yet"))
		} else {
			// Header, stats table and footer take about 14 lines.
			visible := max(v.height-14, 3)
			end := min(v.offset+visible, len(v.distribution))
			sections = append(sections, table.Distribution(v.styles, v.distribution[v.offset:end]))
		}
	}

	sections = append(sections, "", v.styles.Help.Render("[j/k] Scroll  [r] Refresh  [esc] Back"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Stats returns the loaded store counts.
func (v *View) Stats() domain.StoreStats {
	return v.stats
}

// Distribution returns the loaded theme counts.
func (v *View) Distribution() []domain.ThemeCount {
	return v.distribution
}

// Loaded reports whether a load has finished.
func (v *View) Loaded() bool {
	return v.loaded
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
