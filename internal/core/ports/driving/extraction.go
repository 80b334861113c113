package driving

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// ExtractionService assigns investment themes to a single company.
type ExtractionService interface {
	// Extract runs the full pipeline for one ticker and persists the result.
	// A company with no usable signal yields an empty result and a nil error.
	Extract(ctx context.Context, ticker string) (*domain.ThemeResult, error)
}

// ProgressFunc receives one event per finished ticker. It may be called
// from multiple goroutines, but never concurrently.
type ProgressFunc func(domain.BatchProgress)

// BatchService runs extraction across many tickers.
type BatchService interface {
	// Run processes tickers with bounded concurrency.
	// Returns domain.ErrFailureBudgetExceeded alongside the report when stopped early.
	Run(ctx context.Context, tickers []string, opts domain.BatchOptions, progress ProgressFunc) (*domain.BatchReport, error)
}
