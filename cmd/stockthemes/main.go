// Command stockthemes extracts and stores investment themes for listed
// companies.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/ai"
	badgercache "github.com/custodia-labs/stockthemes/internal/adapters/driven/cache/badger"
	memorycache "github.com/custodia-labs/stockthemes/internal/adapters/driven/cache/memory"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/catalog"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/config/file"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/embedding/cached"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/llm/themes"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/gdelt"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/patentsview"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/profile"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/ratelimit"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/sec"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/social"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/stocktwits"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/yahoo"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/stockthemes/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/stockthemes/internal/adapters/driving/cli"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/core/services"
	"github.com/custodia-labs/stockthemes/internal/core/services/strategy"
	"github.com/custodia-labs/stockthemes/internal/logger"
	"github.com/custodia-labs/stockthemes/internal/postprocessors"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// catalogFile overrides the embedded catalogue when present in the config dir.
const catalogFile = "catalog.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to read .env: %v", err)
	}

	app, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer app.close()

	cli.SetVersion(version)
	cli.SetServices(app.services)
	return cli.Execute(ctx)
}

// application holds the wired services and everything that must be closed.
type application struct {
	services cli.Services
	closers  []func() error
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}
}

// wire builds every adapter and service from the saved settings.
func wire(ctx context.Context) (*application, error) {
	app := &application{}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	configDir := filepath.Dir(configStore.Path())

	// Storage. The scheduler history and embedding cache always live in
	// SQLite; results and social messages follow the configured backend.
	local, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.closers = append(app.closers, local.Close)

	results, socialStore := local.ResultStore(), local.SocialStore()
	if settings.Storage.Backend == domain.StoragePostgres {
		pg, err := postgres.NewStore(ctx, settings.Storage.PostgresDSN)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		app.closers = append(app.closers, pg.Close)
		results, socialStore = pg.ResultStore(), pg.SocialStore()
	}

	cache, err := openCache(settings.Cache, configDir)
	if err != nil {
		app.close()
		return nil, err
	}
	app.closers = append(app.closers, cache.Close)

	// AI services are optional: a missing or unreachable provider disables
	// the strategies that need it.
	aiServices := ai.Init(ctx, settings)
	app.closers = append(app.closers, func() error { aiServices.Close(); return nil })

	var embedder driven.EmbeddingService
	if aiServices.EmbeddingService != nil {
		embedder = cached.New(aiServices.EmbeddingService, local.EmbeddingCache())
	}

	cat, err := loadCatalog(configDir)
	if err != nil {
		app.close()
		return nil, err
	}
	taxonomy := services.NewTaxonomyStore(cat, embedder)

	providers, err := newProviders(settings, cache, socialStore)
	if err != nil {
		app.close()
		return nil, err
	}

	generator := themes.New(aiServices.LLMService, ratelimit.New(settings.Rates.LLM),
		themes.WithTokenCounter(themes.NewTiktokenCounter(settings.LLM.Model)))
	if prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts")); err == nil {
		generator.SetPromptStore(prompts)
	} else {
		logger.Warn("Using built-in prompts: %v", err)
	}

	strategies, err := strategy.Build(settings.Pipeline, cat, strategy.Deps{
		News:      providers.news,
		Patents:   providers.patents,
		Social:    providers.social,
		Generator: generator,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to build strategies: %w", err)
	}

	pipeline, err := postprocessors.DefaultPipeline(settings.Pipeline)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to build post-processors: %w", err)
	}

	extraction, err := services.NewExtractionService(settings.Pipeline, services.ExtractionDeps{
		Taxonomy:   taxonomy,
		Filings:    providers.filings,
		Profiles:   providers.profiles,
		Pipeline:   pipeline,
		Embedder:   embedder,
		Strategies: strategies,
		Store:      results,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to create extraction service: %w", err)
	}

	batch := services.NewBatchService(extraction)
	collector := services.NewSocialCollector(providers.streamer, socialStore)
	schedulerStore := local.SchedulerStore()
	batchOpts := domain.BatchOptions{
		Concurrency:         settings.Batch.Concurrency,
		MaxFailures:         settings.Batch.MaxFailures,
		CountEmptyAsFailure: settings.Batch.CountEmptyAsFailure,
	}

	app.services = cli.Services{
		Extraction: extraction,
		Batch:      batch,
		Query:      services.NewQueryService(results, taxonomy),
		Settings:   settingsService,
		Social:     collector,
		Tickers:    results,
		Cache:      cache,
		Scheduler: func(cfg domain.SchedulerConfig) driving.Scheduler {
			s := services.NewScheduler(cfg, schedulerStore)
			s.Register(domain.TaskIDSocialCollect, services.SocialCollectTask(collector, results))
			s.Register(domain.TaskIDThemeRefresh, services.ThemeRefreshTask(batch, results, batchOpts))
			return s
		},
		ConfigPath: configStore.Path(),
	}
	return app, nil
}

func openCache(cfg domain.CacheSettings, configDir string) (driven.ResponseCache, error) {
	if !cfg.Enabled {
		return memorycache.New(), nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(configDir, "cache")
	}
	c, err := badgercache.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	return c, nil
}

func loadCatalog(configDir string) (*domain.Catalog, error) {
	path := filepath.Join(configDir, catalogFile)
	if _, err := os.Stat(path); err != nil {
		path = ""
	} else {
		logger.Info("Using catalog %s", path)
	}
	cat, err := catalog.NewLoader(path).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// dataProviders are the external collaborators of the pipeline.
type dataProviders struct {
	filings  driven.FilingProvider
	profiles driven.ProfileProvider
	news     driven.NewsProvider
	patents  driven.PatentProvider
	social   driven.SocialProvider
	streamer driven.SocialStreamer
}

func newProviders(settings *domain.AppSettings, cache driven.ResponseCache, socialStore driven.SocialStore) (*dataProviders, error) {
	timeout := settings.Providers.HTTPTimeout
	rates := settings.Rates
	ttl := settings.Cache
	var cacheOpt []httpclient.Option
	if ttl.Enabled {
		cacheOpt = append(cacheOpt, httpclient.WithCache(cache))
	}
	client := func(name string, interval time.Duration, opts ...httpclient.Option) *httpclient.Client {
		opts = append(append([]httpclient.Option{httpclient.WithTimeout(timeout)}, cacheOpt...), opts...)
		return httpclient.New(name, ratelimit.New(interval), opts...)
	}

	secCfg := sec.DefaultConfig()
	secCfg.QuarterlyTTL, secCfg.AnnualTTL = ttl.QuarterlyTTL, ttl.AnnualTTL
	secProvider := sec.New(client(sec.ProviderName, rates.SEC, httpclient.WithUserAgent(sec.UserAgent(settings.Providers.SECEmail))), secCfg)

	// Yahoo hands out its crumb together with a session cookie.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	yahooCfg := yahoo.DefaultConfig()
	yahooCfg.TTL = ttl.ProfileTTL
	yahooProvider := yahoo.New(client(yahoo.ProviderName, rates.Yahoo,
		httpclient.WithHTTPClient(&http.Client{Jar: jar, Timeout: timeout}),
		httpclient.WithUserAgent(yahoo.BrowserUserAgent)), yahooCfg)

	patentProvider := patentsview.New(client(patentsview.ProviderName, rates.PatentsView), patentsview.Config{
		APIKey: settings.Providers.PatentsViewAPIKey,
		TTL:    ttl.PatentTTL,
	})

	// Streams are never cached.
	streamer := stocktwits.New(httpclient.New(stocktwits.ProviderName, ratelimit.New(rates.StockTwits),
		httpclient.WithTimeout(timeout)), "")

	return &dataProviders{
		filings:  secProvider,
		profiles: profile.NewComposite(yahooProvider, secProvider),
		news:     gdelt.New(client(gdelt.ProviderName, rates.GDELT), gdelt.Config{TTL: ttl.NewsTTL}),
		patents:  patentProvider,
		social:   social.New(socialStore),
		streamer: streamer,
	}, nil
}
