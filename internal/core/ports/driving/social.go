package driving

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// SocialCollector fetches live social messages and stores them for later
// extraction runs.
type SocialCollector interface {
	// Collect fetches and stores messages for each ticker.
	// Per-ticker failures are reported, not returned.
	Collect(ctx context.Context, tickers []string) (*domain.CollectReport, error)
}
