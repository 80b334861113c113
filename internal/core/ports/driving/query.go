package driving

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// QueryService answers questions about stored theme results.
type QueryService interface {
	// Lookup returns a stored company and its themes.
	// Returns domain.ErrNotFound if the ticker has never been extracted.
	Lookup(ctx context.Context, ticker string, minConfidence float64) (*domain.CompanyThemes, error)

	// FindStocks returns stocks carrying a theme. The theme may be any alias
	// or synonym; it is canonicalised through the taxonomy.
	FindStocks(ctx context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error)

	// Distribution counts stocks per theme.
	Distribution(ctx context.Context) ([]domain.ThemeCount, error)

	// Stats reports store row counts.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Taxonomy returns the canonical themes in catalogue order.
	Taxonomy() []domain.TaxonomyTheme
}
