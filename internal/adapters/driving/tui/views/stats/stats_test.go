package stats

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

type mockQueryService struct {
	stats   domain.StoreStats
	dist    []domain.ThemeCount
	statErr error
}

func (m *mockQueryService) Lookup(context.Context, string, float64) (*domain.CompanyThemes, error) {
	return nil, domain.ErrNotFound
}

func (m *mockQueryService) FindStocks(context.Context, string, float64, int) ([]domain.StockMatch, error) {
	return nil, nil
}

func (m *mockQueryService) Distribution(context.Context) ([]domain.ThemeCount, error) {
	return m.dist, nil
}

func (m *mockQueryService) Stats(context.Context) (domain.StoreStats, error) {
	return m.stats, m.statErr
}

func (m *mockQueryService) Taxonomy() []domain.TaxonomyTheme {
	return nil
}

func TestStatsView_Load(t *testing.T) {
	svc := &mockQueryService{
		stats: domain.StoreStats{Stocks: 12, Themes: 30, Associations: 85, SocialMessages: 400},
		dist: []domain.ThemeCount{
			{Theme: "cloud computing", Category: domain.CategoryTechnology, StockCount: 7, AvgConfidence: 0.74},
			{Theme: "cybersecurity", Category: domain.CategoryTechnology, StockCount: 3, AvgConfidence: 0.66},
		},
	}
	v := NewView(nil, svc)
	v.SetDimensions(100, 40)
	assert.Contains(t, v.View(), "Loading...")

	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.True(t, v.Loaded())
	assert.NoError(t, v.Err())
	assert.Equal(t, 12, v.Stats().Stocks)
	assert.Len(t, v.Distribution(), 2)

	out := v.View()
	assert.Contains(t, out, "cloud computing")
	assert.Contains(t, out, "400")
}

func TestStatsView_Error(t *testing.T) {
	v := NewView(nil, &mockQueryService{statErr: errors.New("no such table")})
	v.SetDimensions(80, 24)
	v.Update(v.Init()())
	assert.EqualError(t, v.Err(), "no such table")
	assert.Contains(t, v.View(), "no such table")
}

func TestStatsView_NoService(t *testing.T) {
	v := NewView(nil, nil)
	msg := v.Init()()
	assert.Equal(t, messages.StatsLoaded{Err: messages.ErrNoQueryService}, msg)
}

func TestStatsView_Keys(t *testing.T) {
	v := NewView(nil, &mockQueryService{dist: []domain.ThemeCount{{Theme: "a"}, {Theme: "b"}}})
	v.SetDimensions(80, 24)
	v.Update(v.Init()())

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, v.offset)
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, v.offset)
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, v.offset)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
