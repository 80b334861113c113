package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// ResultStore persists theme results and company profiles.
type ResultStore interface {
	// SaveResult replaces the ticker's theme associations with result.Themes
	// and records the run, in one transaction. Saving the same result twice
	// leaves the store unchanged apart from timestamps.
	SaveResult(ctx context.Context, result *domain.ThemeResult) error

	// SaveProfile creates or updates the company row.
	SaveProfile(ctx context.Context, profile domain.CompanyProfile) error

	// GetProfile returns the stored company row.
	// Returns domain.ErrNotFound if the ticker is unknown.
	GetProfile(ctx context.Context, ticker string) (*domain.CompanyProfile, error)

	// GetThemes returns a ticker's themes at or above minConfidence,
	// ordered by confidence descending.
	GetThemes(ctx context.Context, ticker string, minConfidence float64) ([]domain.StockTheme, error)

	// FindStocks returns stocks carrying the canonical theme, ordered by
	// confidence descending. limit <= 0 means no limit.
	FindStocks(ctx context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error)

	// ThemeDistribution counts stocks per theme, most common first.
	ThemeDistribution(ctx context.Context) ([]domain.ThemeCount, error)

	// Tickers returns every stored ticker in ascending order.
	Tickers(ctx context.Context) ([]string, error)

	// RefreshedSince returns tickers whose themes were saved at or after since.
	RefreshedSince(ctx context.Context, since time.Time) ([]string, error)

	// Stats reports row counts.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}

// SocialStore persists collected social messages.
type SocialStore interface {
	// SaveMessages inserts messages, ignoring ones already stored for the
	// same (source, message id). Returns the number inserted.
	SaveMessages(ctx context.Context, msgs []domain.SocialMessage) (int, error)

	// Messages returns the ticker's messages created at or after since,
	// newest first. Bearish messages are excluded unless includeBearish is set.
	Messages(ctx context.Context, ticker string, since time.Time, includeBearish bool) ([]domain.SocialMessage, error)
}

// ResponseCache stores raw provider responses with a time-to-live.
type ResponseCache interface {
	// Get returns a cached value. The boolean is false on a miss or expiry.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Clear removes every entry whose key starts with prefix. An empty prefix clears all.
	Clear(ctx context.Context, prefix string) (int, error)

	// Close releases resources.
	Close() error
}
