package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure SocialCollector implements the interface.
var _ driving.SocialCollector = (*SocialCollector)(nil)

// SocialCollector pulls live social streams and persists them so the
// social strategy can read a rolling window later.
type SocialCollector struct {
	streamer driven.SocialStreamer
	store    driven.SocialStore
}

// NewSocialCollector creates a collector.
func NewSocialCollector(streamer driven.SocialStreamer, store driven.SocialStore) *SocialCollector {
	return &SocialCollector{streamer: streamer, store: store}
}

// Collect fetches and stores messages for each ticker in turn. A failing
// ticker is recorded and skipped; only cancellation aborts the pass.
func (c *SocialCollector) Collect(ctx context.Context, tickers []string) (*domain.CollectReport, error) {
	if c.streamer == nil || c.store == nil {
		return nil, fmt.Errorf("%w: social collection", domain.ErrMissingService)
	}
	tickers, err := domain.NormalizeTickers(tickers)
	if err != nil {
		return nil, err
	}

	logger.Section("Social Collection: " + c.streamer.Name())
	report := &domain.CollectReport{Tickers: len(tickers), Failures: make(map[string]string)}

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		msgs, err := c.streamer.Stream(ctx, ticker)
		if err != nil {
			logger.Warn("%s stream for %s failed: %v", c.streamer.Name(), ticker, err)
			report.Failures[ticker] = err.Error()
			continue
		}
		report.Fetched += len(msgs)

		inserted, err := c.store.SaveMessages(ctx, msgs)
		if err != nil {
			return report, fmt.Errorf("save messages for %s: %w", ticker, err)
		}
		report.Inserted += inserted
		logger.Debug("%s: %d fetched, %d new", ticker, len(msgs), inserted)
	}

	logger.Info("Social collection: %d tickers, %d fetched, %d new", report.Tickers, report.Fetched, report.Inserted)
	return report, nil
}
