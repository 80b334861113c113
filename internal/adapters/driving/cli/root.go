// Package cli provides the stockthemes command-line interface.
// It is a driving adapter: commands translate flags into calls on the
// driving ports configured by the composition root.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	logFormat string
)

// TickerCatalog lists tickers already held by the result store.
type TickerCatalog interface {
	// Tickers returns every stored ticker in ascending order.
	Tickers(ctx context.Context) ([]string, error)

	// RefreshedSince returns tickers saved at or after since.
	RefreshedSince(ctx context.Context, since time.Time) ([]string, error)
}

// CacheClearer removes cached provider responses.
type CacheClearer interface {
	Clear(ctx context.Context, prefix string) (int, error)
}

// SchedulerFactory builds a scheduler for a configuration. The schedule
// command calls it again whenever the config file changes.
type SchedulerFactory func(config domain.SchedulerConfig) driving.Scheduler

// Services holds the driving ports used by commands. Nil services make the
// commands that need them fail with a "not configured" error.
type Services struct {
	Extraction driving.ExtractionService
	Batch      driving.BatchService
	Query      driving.QueryService
	Settings   driving.SettingsService
	Social     driving.SocialCollector
	Tickers    TickerCatalog
	Cache      CacheClearer
	Scheduler  SchedulerFactory

	// ConfigPath is the config file watched by the schedule command.
	ConfigPath string
}

var (
	extractionService driving.ExtractionService
	batchService      driving.BatchService
	queryService      driving.QueryService
	settingsService   driving.SettingsService
	socialCollector   driving.SocialCollector
	tickerCatalog     TickerCatalog
	responseCache     CacheClearer
	newScheduler      SchedulerFactory
	configPath        string
)

var rootCmd = &cobra.Command{
	Use:   "stockthemes",
	Short: "Assign investment themes to stocks",
	Long: `stockthemes extracts investment themes for listed companies.

It combines SEC filings, company profiles, news, patents and social
messages through an ensemble of strategies (code mappings, keyword
patterns, semantic similarity and an optional LLM) and stores the ranked
themes for lookup.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetFormat(logger.Format(logFormat))
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logger.FormatConsole), "log format: console or json")
}

// SetServices configures the services used by commands.
func SetServices(s Services) {
	extractionService = s.Extraction
	batchService = s.Batch
	queryService = s.Query
	settingsService = s.Settings
	socialCollector = s.Social
	tickerCatalog = s.Tickers
	responseCache = s.Cache
	newScheduler = s.Scheduler
	configPath = s.ConfigPath
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer logger.Sync()
	return rootCmd.ExecuteContext(ctx)
}
