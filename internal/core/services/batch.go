package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchService = (*BatchService)(nil)

const emptyResultFailure = "no themes extracted"

// BatchService runs extraction over many tickers with bounded concurrency
// and a failure budget.
type BatchService struct {
	extractor driving.ExtractionService
}

// NewBatchService creates a batch driver around extractor.
func NewBatchService(extractor driving.ExtractionService) *BatchService {
	return &BatchService{extractor: extractor}
}

// Run extracts every ticker. Once more than opts.MaxFailures tickers have
// failed, no new tickers are started and in-flight work is cancelled;
// those tickers count as skipped. A zero MaxFailures disables the budget.
func (s *BatchService) Run(
	ctx context.Context, tickers []string, opts domain.BatchOptions, progress driving.ProgressFunc,
) (*domain.BatchReport, error) {
	start := time.Now()
	concurrency := max(opts.Concurrency, 1)

	logger.Section("Batch Extraction")
	logger.Debug("%d tickers, concurrency %d, max failures %d", len(tickers), concurrency, opts.MaxFailures)

	report := &domain.BatchReport{Total: len(tickers), Failures: make(map[string]string)}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu        sync.Mutex
		completed int
	)
	record := func(ticker string, result *domain.ThemeResult, err error) {
		mu.Lock()
		defer mu.Unlock()

		p := domain.BatchProgress{Ticker: ticker, Total: len(tickers), Err: err}
		switch {
		case err != nil && runCtx.Err() != nil:
			report.Skipped++
		case err != nil:
			report.Failed++
			report.Failures[ticker] = err.Error()
			logger.Warn("%s failed: %v", ticker, err)
		case result.IsEmpty() && opts.CountEmptyAsFailure:
			report.Failed++
			report.Failures[ticker] = emptyResultFailure
		case result.IsEmpty():
			report.Empty++
		default:
			report.Succeeded++
			p.Themes = len(result.Themes)
		}

		completed++
		p.Completed = completed
		if progress != nil {
			progress(p)
		}

		if opts.MaxFailures > 0 && report.Failed > opts.MaxFailures && !report.Stopped {
			logger.Warn("Failure budget of %d exceeded, stopping batch", opts.MaxFailures)
			report.Stopped = true
			cancel()
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	scheduled := 0
	for _, ticker := range tickers {
		if runCtx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			if err := runCtx.Err(); err != nil {
				record(ticker, nil, err)
				return nil
			}
			result, err := s.extractor.Extract(runCtx, ticker)
			record(ticker, result, err)
			return nil
		})
	}
	_ = g.Wait()

	report.Skipped += len(tickers) - scheduled
	report.Duration = time.Since(start)

	logger.Info("Batch done: %d ok, %d empty, %d failed, %d skipped",
		report.Succeeded, report.Empty, report.Failed, report.Skipped)

	if report.Stopped {
		return report, fmt.Errorf("%w: %d failures", domain.ErrFailureBudgetExceeded, report.Failed)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
