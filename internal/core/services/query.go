package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultFindLimit caps FindStocks when no limit is given.
const DefaultFindLimit = 50

// QueryService answers read-only questions about stored themes.
type QueryService struct {
	store    driven.ResultStore
	taxonomy *TaxonomyStore
}

// NewQueryService creates a query service.
func NewQueryService(store driven.ResultStore, taxonomy *TaxonomyStore) *QueryService {
	return &QueryService{store: store, taxonomy: taxonomy}
}

// Lookup returns the stored profile and themes for ticker.
func (s *QueryService) Lookup(ctx context.Context, ticker string, minConfidence float64) (*domain.CompanyThemes, error) {
	ticker, err := domain.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, ticker)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		profile = &domain.CompanyProfile{Ticker: ticker}
	case err != nil:
		return nil, fmt.Errorf("get profile %s: %w", ticker, err)
	}

	themes, err := s.store.GetThemes(ctx, ticker, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("get themes %s: %w", ticker, err)
	}
	if len(themes) == 0 && profile.Name == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ticker)
	}

	return &domain.CompanyThemes{Profile: *profile, Themes: themes}, nil
}

// FindStocks returns companies associated with theme, strongest first.
// The theme is resolved through the taxonomy so aliases work.
func (s *QueryService) FindStocks(ctx context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	if strings.TrimSpace(theme) == "" {
		return nil, fmt.Errorf("%w: empty theme", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultFindLimit
	}

	name := domain.NormalizeName(theme)
	if s.taxonomy != nil {
		if t, ok := s.taxonomy.Taxonomy().Resolve(theme); ok {
			name = t.Name
		}
	}
	return s.store.FindStocks(ctx, name, minConfidence, limit)
}

// Distribution returns per-theme stock counts.
func (s *QueryService) Distribution(ctx context.Context) ([]domain.ThemeCount, error) {
	return s.store.ThemeDistribution(ctx)
}

// Stats returns store totals.
func (s *QueryService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}

// Taxonomy returns the reference themes.
func (s *QueryService) Taxonomy() []domain.TaxonomyTheme {
	if s.taxonomy == nil {
		return nil
	}
	return s.taxonomy.Taxonomy().Themes()
}
