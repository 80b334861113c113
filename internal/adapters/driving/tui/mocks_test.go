package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// MockQueryService serves one stored company and a fixed stock list.
type MockQueryService struct {
	Company *domain.CompanyThemes
	Stocks  []domain.StockMatch
	Err     error
}

func (m *MockQueryService) Lookup(_ context.Context, _ string, _ float64) (*domain.CompanyThemes, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Company == nil {
		return nil, domain.ErrNotFound
	}
	return m.Company, nil
}

func (m *MockQueryService) FindStocks(_ context.Context, _ string, _ float64, _ int) ([]domain.StockMatch, error) {
	return m.Stocks, m.Err
}

func (m *MockQueryService) Distribution(_ context.Context) ([]domain.ThemeCount, error) {
	return nil, m.Err
}

func (m *MockQueryService) Stats(_ context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{Stocks: 1}, m.Err
}

func (m *MockQueryService) Taxonomy() []domain.TaxonomyTheme {
	return nil
}

// MockBatchService reports one progress event per ticker.
type MockBatchService struct {
	mu      sync.Mutex
	tickers []string
	Err     error
}

func (m *MockBatchService) Run(
	_ context.Context,
	tickers []string,
	_ domain.BatchOptions,
	progress driving.ProgressFunc,
) (*domain.BatchReport, error) {
	m.mu.Lock()
	m.tickers = tickers
	m.mu.Unlock()

	report := &domain.BatchReport{Total: len(tickers), Failures: map[string]string{}}
	for i, t := range tickers {
		report.Succeeded++
		if progress != nil {
			progress(domain.BatchProgress{Ticker: t, Completed: i + 1, Total: len(tickers), Themes: 3})
		}
	}
	return report, m.Err
}
