package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func newTestApp(t *testing.T, query *MockQueryService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Query: query})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(&Ports{Query: &MockQueryService{}})
	require.NoError(t, err)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.NotNil(t, app.Init())

	_, err = NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingQueryService)
}

func TestApp_View_NotReady(t *testing.T) {
	app, err := NewApp(&Ports{Query: &MockQueryService{}})
	require.NoError(t, err)
	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "stockthemes")
}

func TestApp_ViewChanged(t *testing.T) {
	app := newTestApp(t, &MockQueryService{})

	for _, v := range []messages.ViewType{messages.ViewLookup, messages.ViewFind, messages.ViewStats, messages.ViewHelp} {
		t.Run(v.String(), func(t *testing.T) {
			app.Update(messages.ViewChanged{View: v})
			assert.Equal(t, v, app.CurrentView())
			assert.NotEmpty(t, app.View())
		})
	}
}

func TestApp_HelpEscReturnsToMenu(t *testing.T) {
	app := newTestApp(t, &MockQueryService{})
	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Lookup / Find")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_LookupRequested(t *testing.T) {
	company := &domain.CompanyThemes{
		Profile: domain.CompanyProfile{Ticker: "NVDA", Name: "NVIDIA Corp"},
		Themes:  []domain.StockTheme{{Theme: "artificial intelligence", Confidence: 0.9, Source: domain.SourceGenerative}},
	}
	app := newTestApp(t, &MockQueryService{Company: company})

	_, cmd := app.Update(messages.LookupRequested{Ticker: "NVDA"})
	assert.Equal(t, messages.ViewLookup, app.CurrentView())
	require.NotNil(t, cmd)

	app.Update(cmd())
	assert.NoError(t, app.Err())
	assert.Equal(t, company, app.LookupView().Company())
	assert.Contains(t, app.View(), "NVIDIA Corp")
}

func TestApp_FindCompleted(t *testing.T) {
	app := newTestApp(t, &MockQueryService{})
	app.Update(messages.ViewChanged{View: messages.ViewFind})

	app.Update(messages.FindCompleted{
		Theme:  "robotics",
		Stocks: []domain.StockMatch{{Ticker: "ISRG", Name: "Intuitive Surgical", Confidence: 0.8}},
	})
	assert.Len(t, app.FindView().Rows(), 1)
	assert.Contains(t, app.View(), "ISRG")
}

func TestApp_StatsLoadedError(t *testing.T) {
	app := newTestApp(t, &MockQueryService{})
	app.Update(messages.ViewChanged{View: messages.ViewStats})

	boom := errors.New("database locked")
	app.Update(messages.StatsLoaded{Err: boom})
	assert.ErrorIs(t, app.Err(), boom)
	assert.Contains(t, app.View(), "database locked")
}

func TestApp_Quit(t *testing.T) {
	app := newTestApp(t, &MockQueryService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
