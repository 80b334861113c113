package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/core/services/strategy"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

const (
	profileProviderName   = "profile"
	embeddingProviderName = "embedding"
	chunkerProviderName   = "chunker"
)

// ExtractionDeps are the collaborators of the extraction pipeline.
// Only Taxonomy is required; every other member degrades to no data.
type ExtractionDeps struct {
	Taxonomy   *TaxonomyStore
	Filings    driven.FilingProvider
	Profiles   driven.ProfileProvider
	Pipeline   driven.PostProcessorPipeline
	Embedder   driven.EmbeddingService
	Strategies []strategy.Strategy
	Store      driven.ResultStore
}

// ExtractionService runs the full theme pipeline for one company.
type ExtractionService struct {
	cfg        domain.PipelineConfig
	taxonomy   *TaxonomyStore
	resolver   *FallbackResolver
	profiles   driven.ProfileProvider
	pipeline   driven.PostProcessorPipeline
	filter     *SemanticFilter
	strategies []strategy.Strategy
	merger     *Merger
	store      driven.ResultStore
	now        func() time.Time
}

// NewExtractionService creates an extraction service with a fixed
// configuration. The configuration is never re-read during extraction.
func NewExtractionService(cfg domain.PipelineConfig, deps ExtractionDeps) (*ExtractionService, error) {
	if deps.Taxonomy == nil {
		return nil, fmt.Errorf("%w: taxonomy", domain.ErrMissingService)
	}
	return &ExtractionService{
		cfg:        cfg,
		taxonomy:   deps.Taxonomy,
		resolver:   NewFallbackResolver(deps.Filings),
		profiles:   deps.Profiles,
		pipeline:   deps.Pipeline,
		filter:     NewSemanticFilter(deps.Embedder),
		strategies: deps.Strategies,
		merger:     NewMerger(deps.Taxonomy.Taxonomy(), cfg.MaxThemes),
		store:      deps.Store,
		now:        time.Now,
	}, nil
}

// Extract resolves inputs for ticker, runs every strategy and merges their
// candidates. Missing data never fails extraction: a company without any
// signal yields an empty result. Errors come only from an invalid ticker,
// a cancelled context or the result store.
func (s *ExtractionService) Extract(ctx context.Context, ticker string) (*domain.ThemeResult, error) {
	ticker, err := domain.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	logger.Section("Theme Extraction: " + ticker)
	notes := &strategy.Notes{}

	filing, profile := s.resolveInputs(ctx, ticker, notes)

	chunks := s.chunk(ctx, filing, notes)
	filtered := s.filterChunks(ctx, chunks, notes)
	logger.Debug("%s: %d chunks, %d relevant", ticker, len(chunks), len(filtered))

	in := strategy.NewInputs(ticker, profile, filing, filtered, notes)
	candidates := s.fanOut(ctx, in)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := s.merger.Merge(ticker, in.CompanyName(), candidates)
	result.RunID = uuid.NewString()
	result.GeneratedAt = s.now().UTC()
	result.Metadata.ChunksTotal = len(chunks)
	result.Metadata.ChunksRelevant = len(filtered)
	if filing != nil {
		result.Metadata.FilingOrigin = filing.Origin
	}
	result.Metadata.Unavailable = unavailableSummary(notes.Items())

	logger.Info("%s: %d themes from %d candidates", ticker, len(result.Themes), result.Metadata.TotalCandidates)

	if err := s.save(ctx, profile, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// resolveInputs fetches the filing and the profile concurrently.
func (s *ExtractionService) resolveInputs(
	ctx context.Context, ticker string, notes *strategy.Notes,
) (*domain.SourceDocument, domain.CompanyProfile) {
	var (
		filingOut  domain.Outcome[domain.SourceDocument]
		profileOut domain.Outcome[domain.CompanyProfile]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		filingOut = s.resolver.Resolve(gctx, ticker)
		return nil
	})
	g.Go(func() error {
		if s.profiles == nil {
			profileOut = domain.Missing[domain.CompanyProfile](profileProviderName, domain.ReasonNoCredential, nil)
			return nil
		}
		profileOut = s.profiles.FetchProfile(gctx, ticker)
		return nil
	})
	_ = g.Wait()

	var filing *domain.SourceDocument
	if doc, ok := filingOut.Get(); ok {
		filing = &doc
	} else {
		notes.Add(filingOut.Unavailable())
	}

	profile, ok := profileOut.Get()
	if !ok {
		notes.Add(profileOut.Unavailable())
	}
	profile.Ticker = ticker
	return filing, profile
}

func (s *ExtractionService) chunk(
	ctx context.Context, filing *domain.SourceDocument, notes *strategy.Notes,
) []domain.TextChunk {
	if filing == nil || s.pipeline == nil {
		return nil
	}
	chunks, err := s.pipeline.Process(ctx, filing)
	if err != nil {
		logger.Warn("Post-processing %s failed: %v", filing.Ref(), err)
		notes.Add(domain.Unavailable{Provider: chunkerProviderName, Reason: domain.ReasonFor(err), Err: err})
		return nil
	}
	return chunks
}

// filterChunks degrades any embedding failure to no relevant chunks.
func (s *ExtractionService) filterChunks(
	ctx context.Context, chunks []domain.TextChunk, notes *strategy.Notes,
) []domain.FilteredChunk {
	if len(chunks) == 0 {
		return nil
	}
	tax, err := s.taxonomy.Embedded(ctx)
	if err == nil {
		var filtered []domain.FilteredChunk
		filtered, err = s.filter.Filter(ctx, chunks, tax, s.cfg.SimilarityThreshold)
		if err == nil {
			return filtered
		}
	}
	logger.Debug("Semantic filter unavailable: %v", err)
	reason := domain.ReasonFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		reason = domain.ReasonTimeout
	}
	notes.Add(domain.Unavailable{Provider: embeddingProviderName, Reason: reason, Err: err})
	return nil
}

// fanOut runs all strategies concurrently. No strategy can fail or cancel
// another; results keep strategy order.
func (s *ExtractionService) fanOut(ctx context.Context, in strategy.Inputs) []domain.ThemeCandidate {
	results := make([][]domain.ThemeCandidate, len(s.strategies))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range s.strategies {
		g.Go(func() error {
			results[i] = s.runStrategy(gctx, st, in)
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.ThemeCandidate
	for i, r := range results {
		logger.Debug("Strategy %s: %d candidates", s.strategies[i].Source(), len(r))
		out = append(out, r...)
	}
	return out
}

func (s *ExtractionService) runStrategy(
	ctx context.Context, st strategy.Strategy, in strategy.Inputs,
) (out []domain.ThemeCandidate) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Strategy %s panicked: %v", st.Source(), r)
			in.Note(domain.Unavailable{Provider: string(st.Source()), Reason: domain.ReasonFailed, Err: fmt.Errorf("panic: %v", r)})
			out = nil
		}
	}()

	if s.cfg.StrategyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StrategyTimeout)
		defer cancel()
	}

	out = st.Extract(ctx, in)
	for i := range out {
		out[i].Source = st.Source()
	}
	return out
}

func (s *ExtractionService) save(ctx context.Context, profile domain.CompanyProfile, result *domain.ThemeResult) error {
	if s.store == nil {
		return nil
	}
	if profile.Name != "" || profile.Sector != "" || profile.SICCode != "" {
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("save profile %s: %w", profile.Ticker, err)
		}
	}
	if err := s.store.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("save result %s: %w", result.Ticker, err)
	}
	return nil
}

// unavailableSummary renders notes as sorted, de-duplicated
// "provider: reason" strings.
func unavailableSummary(items []domain.Unavailable) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, u := range items {
		if u.Provider == "" {
			continue
		}
		key := u.Provider + ": " + string(u.Reason)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
