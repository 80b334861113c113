package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/core/services/strategy"
)

// --- Catalogue fixture ---

// testCatalog returns a catalogue whose taxonomy order puts artificial
// intelligence before wearable technology.
func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	tax, err := domain.NewTaxonomy(
		[]domain.TaxonomyTheme{
			{Name: "artificial intelligence", Category: domain.CategoryTechnology, Synonyms: []string{"machine learning", "AI"}},
			{Name: "wearable technology", Category: domain.CategoryConsumer, Synonyms: []string{"wearables"}},
			{Name: "consumer electronics", Category: domain.CategoryConsumer, Description: "phones, computers and devices"},
			{Name: "cloud computing", Category: domain.CategoryTechnology, Description: "hosted cloud services"},
			{Name: "semiconductors", Category: domain.CategoryTechnology, Synonyms: []string{"chips"}},
		},
		map[string]string{"ml": "artificial intelligence"},
		[]string{"technology", "growth", "innovation"},
	)
	require.NoError(t, err)

	return &domain.Catalog{
		Taxonomy: tax,
		SICCodes: domain.CodeTable{
			"3571": {{Theme: "consumer electronics", Confidence: 0.7}},
		},
		Sectors: domain.CodeTable{"technology": {{Theme: "consumer electronics"}}},
		Patterns: []domain.KeywordPattern{
			{Theme: "artificial intelligence", Pattern: `\bmachine learning\b`},
			{Theme: "wearable technology", Pattern: `\bwearables?\b`, Specificity: 0.45},
			{Theme: "cloud computing", Pattern: `\bcloud\b`},
		},
	}
}

// --- Embedding ---

// keywordEmbedder embeds text as keyword counts on fixed axes, so cosine
// similarity is predictable in tests.
type keywordEmbedder struct {
	axes [][]string

	mu      sync.Mutex
	batches int
	err     error
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{axes: [][]string{
		{"machine learning", "artificial intelligence"},
		{"wearable"},
		{"consumer electronics", "devices"},
		{"cloud"},
		{"chips", "semiconductor"},
	}}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	text = strings.ToLower(text)
	vec := make([]float32, len(e.axes))
	for i, words := range e.axes {
		for _, w := range words {
			vec[i] += float32(strings.Count(text, w))
		}
	}
	return vec
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batches++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int              { return len(e.axes) }
func (e *keywordEmbedder) ModelName() string            { return "keyword-test" }
func (e *keywordEmbedder) Ping(_ context.Context) error { return e.err }
func (e *keywordEmbedder) Close() error                 { return nil }

// fixedEmbedder returns preset vectors in call order.
type fixedEmbedder struct {
	vectors [][]float32
}

func (e *fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return e.vectors[0], nil
}

func (e *fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return e.vectors[:len(texts)], nil
}

func (e *fixedEmbedder) Dimensions() int              { return len(e.vectors[0]) }
func (e *fixedEmbedder) ModelName() string            { return "fixed-test" }
func (e *fixedEmbedder) Ping(_ context.Context) error { return nil }
func (e *fixedEmbedder) Close() error                 { return nil }

// --- Providers ---

type mockFilingProvider struct {
	mu       sync.Mutex
	docs     map[domain.OriginKind]domain.Outcome[domain.SourceDocument]
	requests []domain.OriginKind
}

func (m *mockFilingProvider) FetchFiling(_ context.Context, ticker string, kind domain.OriginKind) domain.Outcome[domain.SourceDocument] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, kind)
	if out, ok := m.docs[kind]; ok {
		return out
	}
	return domain.Missing[domain.SourceDocument]("sec", domain.ReasonNotFound, nil)
}

type mockProfileProvider struct {
	out domain.Outcome[domain.CompanyProfile]
}

func (m *mockProfileProvider) FetchProfile(_ context.Context, _ string) domain.Outcome[domain.CompanyProfile] {
	return m.out
}

type mockThemeGenerator struct {
	out domain.Outcome[[]domain.GeneratedTheme]
}

func (m *mockThemeGenerator) GenerateThemes(_ context.Context, _ domain.GenerationRequest) domain.Outcome[[]domain.GeneratedTheme] {
	return m.out
}

// paragraphPipeline emits one chunk per blank-line separated paragraph.
type paragraphPipeline struct {
	err error
}

func (p *paragraphPipeline) Process(_ context.Context, doc *domain.SourceDocument) ([]domain.TextChunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []domain.TextChunk
	for _, para := range strings.Split(doc.Text, "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		out = append(out, domain.TextChunk{
			DocumentRef: doc.Ref(),
			Ordinal:     len(out),
			Text:        para,
			WordCount:   len(strings.Fields(para)),
		})
	}
	return out, nil
}

// --- Strategies ---

type funcStrategy struct {
	source domain.Source
	fn     func(ctx context.Context) []domain.ThemeCandidate
}

func (s funcStrategy) Source() domain.Source { return s.source }

func (s funcStrategy) Extract(ctx context.Context, _ strategy.Inputs) []domain.ThemeCandidate {
	return s.fn(ctx)
}

// --- Stores ---

// testResultStore is the in-memory store plus save failure injection. It
// keeps the saved pointers and the last FindStocks arguments for assertions.
type testResultStore struct {
	*memory.ResultStore

	mu        sync.Mutex
	saveErr   error
	saved     map[string]*domain.ThemeResult
	profiles  map[string]domain.CompanyProfile
	findTheme string
	findLimit int
}

func newTestResultStore() *testResultStore {
	return &testResultStore{
		ResultStore: memory.NewResultStore(nil),
		saved:       make(map[string]*domain.ThemeResult),
		profiles:    make(map[string]domain.CompanyProfile),
	}
}

func (s *testResultStore) SaveResult(ctx context.Context, r *domain.ThemeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[r.Ticker] = r
	return s.ResultStore.SaveResult(ctx, r)
}

func (s *testResultStore) SaveProfile(ctx context.Context, p domain.CompanyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.profiles[p.Ticker] = p
	return s.ResultStore.SaveProfile(ctx, p)
}

func (s *testResultStore) FindStocks(ctx context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	s.mu.Lock()
	s.findTheme, s.findLimit = theme, limit
	s.mu.Unlock()
	return s.ResultStore.FindStocks(ctx, theme, minConfidence, limit)
}

// seed stores themes for ticker, each at the paired confidence.
func (s *testResultStore) seed(t *testing.T, ticker string, themes map[string]float64) {
	t.Helper()
	r := &domain.ThemeResult{Ticker: ticker}
	for name, conf := range themes {
		r.Themes = append(r.Themes, domain.RankedTheme{Theme: name, Confidence: conf, Source: domain.SourcePattern})
	}
	require.NoError(t, s.ResultStore.SaveResult(context.Background(), r))
}

type testSocialStore struct {
	*memory.SocialStore
	saveErr error
}

func newTestSocialStore() *testSocialStore {
	return &testSocialStore{SocialStore: memory.NewSocialStore()}
}

func (s *testSocialStore) SaveMessages(ctx context.Context, msgs []domain.SocialMessage) (int, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	return s.SocialStore.SaveMessages(ctx, msgs)
}

type mockStreamer struct {
	messages map[string][]domain.SocialMessage
	errs     map[string]error
	calls    []string
}

func (m *mockStreamer) Name() string { return "stocktwits" }

func (m *mockStreamer) Stream(_ context.Context, ticker string) ([]domain.SocialMessage, error) {
	m.calls = append(m.calls, ticker)
	if err := m.errs[ticker]; err != nil {
		return nil, err
	}
	return m.messages[ticker], nil
}

// testSchedulerStore is the in-memory store with read and prune failures
// injectable. It records the last keep value passed to PruneHistory.
type testSchedulerStore struct {
	*memory.SchedulerStore

	mu       sync.Mutex
	getErr   error
	pruneErr error
	pruned   int
}

func newTestSchedulerStore() *testSchedulerStore {
	return &testSchedulerStore{SchedulerStore: memory.NewSchedulerStore()}
}

func (s *testSchedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.SchedulerStore.GetTask(ctx, taskID)
}

func (s *testSchedulerStore) PruneHistory(ctx context.Context, keep int) error {
	s.mu.Lock()
	s.pruned = keep
	s.mu.Unlock()
	if s.pruneErr != nil {
		return s.pruneErr
	}
	return s.SchedulerStore.PruneHistory(ctx, keep)
}

// --- Driving mocks ---

type mockExtractor struct {
	mu      sync.Mutex
	fn      func(ctx context.Context, ticker string) (*domain.ThemeResult, error)
	tickers []string
}

func (m *mockExtractor) Extract(ctx context.Context, ticker string) (*domain.ThemeResult, error) {
	m.mu.Lock()
	m.tickers = append(m.tickers, ticker)
	m.mu.Unlock()
	return m.fn(ctx, ticker)
}

func resultWith(ticker string, themes ...string) *domain.ThemeResult {
	r := &domain.ThemeResult{Ticker: ticker}
	for _, t := range themes {
		r.Themes = append(r.Themes, domain.RankedTheme{Theme: t, Confidence: 0.5, Source: domain.SourcePattern})
	}
	return r
}

var errBoom = errors.New("boom")

// Ensure mocks implement interfaces
var (
	_ driven.EmbeddingService      = (*keywordEmbedder)(nil)
	_ driven.FilingProvider        = (*mockFilingProvider)(nil)
	_ driven.ProfileProvider       = (*mockProfileProvider)(nil)
	_ driven.ThemeGenerator        = (*mockThemeGenerator)(nil)
	_ driven.PostProcessorPipeline = (*paragraphPipeline)(nil)
	_ driven.ResultStore           = (*testResultStore)(nil)
	_ driven.SocialStore           = (*testSocialStore)(nil)
	_ driven.SocialStreamer        = (*mockStreamer)(nil)
	_ driven.SchedulerStore        = (*testSchedulerStore)(nil)
	_ driving.ExtractionService    = (*mockExtractor)(nil)
)
