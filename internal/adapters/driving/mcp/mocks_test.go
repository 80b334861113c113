package mcp

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	company  *domain.CompanyThemes
	stocks   []domain.StockMatch
	dist     []domain.ThemeCount
	stats    domain.StoreStats
	taxonomy []domain.TaxonomyTheme
	err      error

	lastTicker string
	lastTheme  string
	lastMin    float64
	lastLimit  int
}

func (m *mockQueryService) Lookup(_ context.Context, ticker string, minConfidence float64) (*domain.CompanyThemes, error) {
	m.lastTicker = ticker
	m.lastMin = minConfidence
	if m.err != nil {
		return nil, m.err
	}
	if m.company == nil {
		return nil, domain.ErrNotFound
	}
	return m.company, nil
}

func (m *mockQueryService) FindStocks(_ context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	m.lastTheme = theme
	m.lastMin = minConfidence
	m.lastLimit = limit
	return m.stocks, m.err
}

func (m *mockQueryService) Distribution(_ context.Context) ([]domain.ThemeCount, error) {
	return m.dist, m.err
}

func (m *mockQueryService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockQueryService) Taxonomy() []domain.TaxonomyTheme {
	return m.taxonomy
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	result *domain.ThemeResult
	err    error
}

func (m *mockExtractionService) Extract(_ context.Context, _ string) (*domain.ThemeResult, error) {
	return m.result, m.err
}
