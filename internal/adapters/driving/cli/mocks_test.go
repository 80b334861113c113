package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// mockExtractionService returns a fixed result for any ticker.
type mockExtractionService struct {
	result *domain.ThemeResult
	err    error
	calls  []string
}

func (m *mockExtractionService) Extract(_ context.Context, ticker string) (*domain.ThemeResult, error) {
	m.calls = append(m.calls, ticker)
	if m.err != nil {
		return nil, m.err
	}
	r := *m.result
	r.Ticker = ticker
	return &r, nil
}

// mockBatchService records the tickers and options it ran with.
type mockBatchService struct {
	tickers []string
	opts    domain.BatchOptions
	fail    map[string]bool
	err     error
}

func (m *mockBatchService) Run(
	_ context.Context,
	tickers []string,
	opts domain.BatchOptions,
	progress driving.ProgressFunc,
) (*domain.BatchReport, error) {
	m.tickers, m.opts = tickers, opts
	report := &domain.BatchReport{Total: len(tickers), Failures: map[string]string{}}
	for i, t := range tickers {
		p := domain.BatchProgress{Ticker: t, Completed: i + 1, Total: len(tickers), Themes: 2}
		if m.fail[t] {
			p.Err = errors.New("no filing")
			p.Themes = 0
			report.Failed++
			report.Failures[t] = "no filing"
		} else {
			report.Succeeded++
		}
		progress(p)
	}
	return report, m.err
}

// mockQueryService serves canned query results.
type mockQueryService struct {
	company   *domain.CompanyThemes
	stocks    []domain.StockMatch
	dist      []domain.ThemeCount
	stats     domain.StoreStats
	taxonomy  []domain.TaxonomyTheme
	lastMin   float64
	lastLimit int
}

func (m *mockQueryService) Lookup(_ context.Context, _ string, minConfidence float64) (*domain.CompanyThemes, error) {
	m.lastMin = minConfidence
	if m.company == nil {
		return nil, domain.ErrNotFound
	}
	return m.company, nil
}

func (m *mockQueryService) FindStocks(_ context.Context, _ string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	m.lastMin, m.lastLimit = minConfidence, limit
	return m.stocks, nil
}

func (m *mockQueryService) Distribution(_ context.Context) ([]domain.ThemeCount, error) {
	return m.dist, nil
}

func (m *mockQueryService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, nil
}

func (m *mockQueryService) Taxonomy() []domain.TaxonomyTheme {
	return m.taxonomy
}

// mockSettingsService holds settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	validateErr error
	embedErr    error
	llmErr      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "bogus" {
		return domain.ErrConfigInvalid
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }
func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }
func (m *mockSettingsService) Keys() []string { return []string{"pipeline.max_themes", "llm.model"} }

// mockSocialCollector reports one message per ticker.
type mockSocialCollector struct {
	tickers []string
}

func (m *mockSocialCollector) Collect(_ context.Context, tickers []string) (*domain.CollectReport, error) {
	m.tickers = tickers
	return &domain.CollectReport{
		Tickers:  len(tickers),
		Fetched:  len(tickers) * 30,
		Inserted: len(tickers) * 5,
		Failures: map[string]string{},
	}, nil
}

// mockTickerCatalog lists stored tickers.
type mockTickerCatalog struct {
	stored    []string
	refreshed []string
	since     time.Time
}

func (m *mockTickerCatalog) Tickers(context.Context) ([]string, error) {
	return m.stored, nil
}

func (m *mockTickerCatalog) RefreshedSince(_ context.Context, since time.Time) ([]string, error) {
	m.since = since
	return m.refreshed, nil
}

// mockCache counts clears.
type mockCache struct {
	prefix string
}

func (m *mockCache) Clear(_ context.Context, prefix string) (int, error) {
	m.prefix = prefix
	return 7, nil
}

// mockScheduler runs tasks immediately.
type mockScheduler struct {
	config    domain.SchedulerConfig
	ran       []string
	status    []domain.TaskStatus
	statusErr error
	recent    int
	failRun   bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) RunNow(_ context.Context, taskID string) (*domain.TaskResult, error) {
	if taskID != domain.TaskIDSocialCollect && taskID != domain.TaskIDThemeRefresh {
		return nil, domain.ErrNotFound
	}
	m.ran = append(m.ran, taskID)
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	result := &domain.TaskResult{TaskID: taskID, StartedAt: start, EndedAt: start.Add(1500 * time.Millisecond), Success: true, ItemsProcessed: 12}
	if m.failRun {
		result.Success = false
		result.Error = "list tickers: database is locked"
	}
	return result, nil
}

func (m *mockScheduler) Status(_ context.Context, recent int) ([]domain.TaskStatus, error) {
	m.recent = recent
	return m.status, m.statusErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	extraction *mockExtractionService
	batch      *mockBatchService
	query      *mockQueryService
	settings   *mockSettingsService
	social     *mockSocialCollector
	tickers    *mockTickerCatalog
	cache      *mockCache
	scheduler  *mockScheduler
}

// setupTestServices installs mock services and returns them with a
// cleanup that resets services and flag variables.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		extraction: &mockExtractionService{result: &domain.ThemeResult{
			CompanyName: "Acme Robotics Inc",
			Themes: []domain.RankedTheme{
				{Theme: "robotics", Category: domain.CategoryIndustrial, Confidence: 0.86, Source: domain.SourceCodeMapping},
				{Theme: "artificial intelligence", Category: domain.CategoryTechnology, Confidence: 0.64, Source: domain.SourceSemantic, Evidence: "vision models"},
			},
			Metadata: domain.ResultMetadata{
				SourcesUsed:     []domain.Source{domain.SourceCodeMapping, domain.SourceSemantic},
				TotalCandidates: 9,
				ChunksTotal:     40,
				ChunksRelevant:  6,
				FilingOrigin:    domain.OriginAnnual,
				Unavailable:     []string{"patentsview: no_credential"},
			},
		}},
		batch: &mockBatchService{},
		query: &mockQueryService{
			company: &domain.CompanyThemes{
				Profile: domain.CompanyProfile{Ticker: "ACME", Name: "Acme Robotics Inc", Sector: "Industrials", Industry: "Machinery"},
				Themes:  []domain.StockTheme{{Theme: "robotics", Confidence: 0.86, Source: domain.SourceCodeMapping}},
			},
			stocks:   []domain.StockMatch{{Ticker: "ACME", Name: "Acme Robotics Inc", Confidence: 0.86}},
			dist:     []domain.ThemeCount{{Theme: "robotics", StockCount: 1, AvgConfidence: 0.86}},
			stats:    domain.StoreStats{Stocks: 1, Themes: 1, Associations: 1, SocialMessages: 42},
			taxonomy: []domain.TaxonomyTheme{{Name: "robotics", Category: domain.CategoryIndustrial, Synonyms: []string{"automation"}}},
		},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}},
		social:    &mockSocialCollector{},
		tickers:   &mockTickerCatalog{stored: []string{"MSFT", "AAPL"}},
		cache:     &mockCache{},
		scheduler: &mockScheduler{},
	}

	SetServices(Services{
		Extraction: ts.extraction,
		Batch:      ts.batch,
		Query:      ts.query,
		Settings:   ts.settings,
		Social:     ts.social,
		Tickers:    ts.tickers,
		Cache:      ts.cache,
		Scheduler: func(cfg domain.SchedulerConfig) driving.Scheduler {
			ts.scheduler.config = cfg
			return ts.scheduler
		},
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

func resetFlags() {
	extractJSON = false
	queryJSON = false
	queryMinConfidence = 0
	findLimit = 50
	batchFile = ""
	batchSkipExisting = ""
	batchConcurrency = 0
	batchMaxFailures = -1
	batchNoTUI = false
	cachePrefix = ""
	scheduleStatusJSON = false
	scheduleStatusRecent = 5
	mcpPort = 0
	mcpHost = "127.0.0.1"
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
