package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMaxWords           = "pipeline.max_words"
	keyThreshold          = "pipeline.similarity_threshold"
	keyMaxThemes          = "pipeline.max_themes"
	keyMarketCapGate      = "pipeline.generative_market_cap_gate"
	keyGenMaxChunks       = "pipeline.generative_max_chunks"
	keyGenTokenBudget     = "pipeline.generative_token_budget"
	keyGenDefaultConf     = "pipeline.generative_default_confidence"
	keyAllowOffTaxonomy   = "pipeline.allow_off_taxonomy"
	keyStrategyTimeout    = "pipeline.strategy_timeout"
	keyNewsLookback       = "pipeline.news_lookback"
	keySocialLookback     = "pipeline.social_lookback"
	keyPostProcessors     = "pipeline.postprocessors"
	keyDisabledStrategies = "pipeline.disabled_strategies"

	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keySECEmail       = "providers.sec_email"
	keyPatentsViewKey = "providers.patentsview_api_key"
	keyHTTPTimeout    = "providers.http_timeout"

	keyRateSEC         = "rates.sec"
	keyRateYahoo       = "rates.yahoo"
	keyRateLLM         = "rates.llm"
	keyRateGDELT       = "rates.gdelt"
	keyRatePatentsView = "rates.patentsview"
	keyRateStockTwits  = "rates.stocktwits"

	keyStorageBackend = "storage.backend"
	keyStorageDataDir = "storage.data_dir"
	keyPostgresDSN    = "storage.postgres_dsn"

	keyCacheEnabled      = "cache.enabled"
	keyCacheDir          = "cache.dir"
	keyCacheProfileTTL   = "cache.profile_ttl"
	keyCacheQuarterlyTTL = "cache.quarterly_ttl"
	keyCacheAnnualTTL    = "cache.annual_ttl"
	keyCachePatentTTL    = "cache.patent_ttl"
	keyCacheNewsTTL      = "cache.news_ttl"

	keyBatchConcurrency = "batch.concurrency"
	keyBatchMaxFailures = "batch.max_failures"
	keyBatchCountEmpty  = "batch.count_empty_as_failure"

	keySchedulerEnabled = "scheduler.enabled"
)

// Environment variables read on top of the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvPatentsViewKey = "PATENTSVIEW_API_KEY"
	EnvSECEmail       = "SEC_EDGAR_EMAIL"
	EnvPostgresDSN    = "STOCKTHEMES_POSTGRES_DSN"
)

type keyValue struct {
	key   string
	value any
}

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settingKinds lists every key accepted by Set.
var settingKinds = map[string]valueKind{
	keyMaxWords: kindInt, keyThreshold: kindFloat, keyMaxThemes: kindInt,
	keyMarketCapGate: kindFloat, keyGenMaxChunks: kindInt, keyGenTokenBudget: kindInt,
	keyGenDefaultConf: kindFloat, keyAllowOffTaxonomy: kindBool, keyStrategyTimeout: kindDuration,
	keyNewsLookback: kindDuration, keySocialLookback: kindDuration,
	keyPostProcessors: kindList, keyDisabledStrategies: kindList,

	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString,
	keyEmbedAPIKey: kindString, keyEmbedDimensions: kindInt,
	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString, keyLLMAPIKey: kindString,

	keySECEmail: kindString, keyPatentsViewKey: kindString, keyHTTPTimeout: kindDuration,
	keyRateSEC: kindDuration, keyRateYahoo: kindDuration, keyRateLLM: kindDuration,
	keyRateGDELT: kindDuration, keyRatePatentsView: kindDuration, keyRateStockTwits: kindDuration,

	keyStorageBackend: kindString, keyStorageDataDir: kindString, keyPostgresDSN: kindString,

	keyCacheEnabled: kindBool, keyCacheDir: kindString, keyCacheProfileTTL: kindDuration,
	keyCacheQuarterlyTTL: kindDuration, keyCacheAnnualTTL: kindDuration,
	keyCachePatentTTL: kindDuration, keyCacheNewsTTL: kindDuration,

	keyBatchConcurrency: kindInt, keyBatchMaxFailures: kindInt, keyBatchCountEmpty: kindBool,

	keySchedulerEnabled: kindBool,
	taskKey(domain.TaskIDSocialCollect, "enabled"): kindBool,
	taskKey(domain.TaskIDSocialCollect, "schedule"): kindString,
	taskKey(domain.TaskIDThemeRefresh, "enabled"):  kindBool,
	taskKey(domain.TaskIDThemeRefresh, "schedule"): kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    newValidator(),
		lookupEnv:   os.LookupEnv,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("chunkerfirst", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		return f.Len() == 0 || f.Index(0).String() == domain.ChunkerStage
	})
	return v
}

// SetEnvLookup replaces the environment lookup, mainly for tests.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	s.lookupEnv = fn
}

// Get retrieves current application settings. Values missing from the
// config file fall back to defaults; blank credentials fall back to the
// environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.load(s.configStore)
	return &settings, nil
}

func (s *SettingsService) load(r driven.ConfigStore) domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	get := reader{r}

	settings := domain.AppSettings{
		Pipeline: domain.PipelineConfig{
			MaxWords:                    get.int(keyMaxWords, defaults.Pipeline.MaxWords),
			SimilarityThreshold:         get.float(keyThreshold, defaults.Pipeline.SimilarityThreshold),
			MaxThemes:                   get.int(keyMaxThemes, defaults.Pipeline.MaxThemes),
			GenerativeMarketCapGate:     get.float(keyMarketCapGate, defaults.Pipeline.GenerativeMarketCapGate),
			GenerativeMaxChunks:         get.int(keyGenMaxChunks, defaults.Pipeline.GenerativeMaxChunks),
			GenerativeTokenBudget:       get.int(keyGenTokenBudget, defaults.Pipeline.GenerativeTokenBudget),
			GenerativeDefaultConfidence: get.float(keyGenDefaultConf, defaults.Pipeline.GenerativeDefaultConfidence),
			AllowOffTaxonomy:            get.bool(keyAllowOffTaxonomy, defaults.Pipeline.AllowOffTaxonomy),
			StrategyTimeout:             get.duration(keyStrategyTimeout, defaults.Pipeline.StrategyTimeout),
			NewsLookback:                get.duration(keyNewsLookback, defaults.Pipeline.NewsLookback),
			SocialLookback:              get.duration(keySocialLookback, defaults.Pipeline.SocialLookback),
			Processors:                  get.list(keyPostProcessors, defaults.Pipeline.Processors),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   get.provider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      get.string(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    r.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     r.GetString(keyEmbedAPIKey),
			Dimensions: get.int(keyEmbedDimensions, defaults.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider: get.provider(keyLLMProvider, defaults.LLM.Provider),
			Model:    get.string(keyLLMModel, defaults.LLM.Model),
			BaseURL:  r.GetString(keyLLMBaseURL),
			APIKey:   r.GetString(keyLLMAPIKey),
		},
		Providers: domain.ProviderSettings{
			SECEmail:          r.GetString(keySECEmail),
			PatentsViewAPIKey: r.GetString(keyPatentsViewKey),
			HTTPTimeout:       get.duration(keyHTTPTimeout, defaults.Providers.HTTPTimeout),
		},
		Rates: domain.RateSettings{
			SEC:         get.duration(keyRateSEC, defaults.Rates.SEC),
			Yahoo:       get.duration(keyRateYahoo, defaults.Rates.Yahoo),
			LLM:         get.duration(keyRateLLM, defaults.Rates.LLM),
			GDELT:       get.duration(keyRateGDELT, defaults.Rates.GDELT),
			PatentsView: get.duration(keyRatePatentsView, defaults.Rates.PatentsView),
			StockTwits:  get.duration(keyRateStockTwits, defaults.Rates.StockTwits),
		},
		Storage: domain.StorageSettings{
			Backend:     domain.StorageBackend(get.string(keyStorageBackend, string(defaults.Storage.Backend))),
			DataDir:     r.GetString(keyStorageDataDir),
			PostgresDSN: r.GetString(keyPostgresDSN),
		},
		Cache: domain.CacheSettings{
			Enabled:      get.bool(keyCacheEnabled, defaults.Cache.Enabled),
			Dir:          r.GetString(keyCacheDir),
			ProfileTTL:   get.duration(keyCacheProfileTTL, defaults.Cache.ProfileTTL),
			QuarterlyTTL: get.duration(keyCacheQuarterlyTTL, defaults.Cache.QuarterlyTTL),
			AnnualTTL:    get.duration(keyCacheAnnualTTL, defaults.Cache.AnnualTTL),
			PatentTTL:    get.duration(keyCachePatentTTL, defaults.Cache.PatentTTL),
			NewsTTL:      get.duration(keyCacheNewsTTL, defaults.Cache.NewsTTL),
		},
		Batch: domain.BatchSettings{
			Concurrency:         get.int(keyBatchConcurrency, defaults.Batch.Concurrency),
			MaxFailures:         get.int(keyBatchMaxFailures, defaults.Batch.MaxFailures),
			CountEmptyAsFailure: get.bool(keyBatchCountEmpty, defaults.Batch.CountEmptyAsFailure),
		},
		Scheduler: s.loadScheduler(get, defaults.Scheduler),
	}

	for _, name := range get.list(keyDisabledStrategies, nil) {
		settings.Pipeline.DisabledStrategies = append(settings.Pipeline.DisabledStrategies, domain.Source(strings.ToLower(name)))
	}

	s.applyEnv(&settings)
	return settings
}

func (s *SettingsService) loadScheduler(get reader, defaults domain.SchedulerConfig) domain.SchedulerConfig {
	cfg := domain.SchedulerConfig{
		Enabled:     get.bool(keySchedulerEnabled, defaults.Enabled),
		TaskConfigs: make(map[string]domain.TaskConfig, len(defaults.TaskConfigs)),
	}
	for id, taskCfg := range defaults.TaskConfigs {
		taskCfg.Enabled = get.bool(taskKey(id, "enabled"), taskCfg.Enabled)
		taskCfg.Schedule = get.string(taskKey(id, "schedule"), taskCfg.Schedule)
		cfg.TaskConfigs[id] = taskCfg
	}
	return cfg
}

// applyEnv fills blank credentials from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	env := s.env
	keyVars := domain.APIKeyEnvVars()

	if settings.LLM.APIKey == "" {
		if name, ok := keyVars[settings.LLM.Provider]; ok {
			settings.LLM.APIKey = env(name)
		}
	}
	if settings.Embedding.APIKey == "" {
		if name, ok := keyVars[settings.Embedding.Provider]; ok {
			settings.Embedding.APIKey = env(name)
		}
	}
	if settings.Providers.PatentsViewAPIKey == "" {
		settings.Providers.PatentsViewAPIKey = env(EnvPatentsViewKey)
	}
	if settings.Providers.SECEmail == "" {
		settings.Providers.SECEmail = env(EnvSECEmail)
	}
	if settings.Storage.PostgresDSN == "" {
		settings.Storage.PostgresDSN = env(EnvPostgresDSN)
	}
}

func (s *SettingsService) env(name string) string {
	if s.lookupEnv == nil || name == "" {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return strings.TrimSpace(v)
}

// Save persists application settings. Credentials taken from the
// environment are not written back.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	p := settings.Pipeline
	disabled := make([]string, len(p.DisabledStrategies))
	for i, src := range p.DisabledStrategies {
		disabled[i] = src.String()
	}

	values := []keyValue{
		{keyMaxWords, p.MaxWords},
		{keyThreshold, p.SimilarityThreshold},
		{keyMaxThemes, p.MaxThemes},
		{keyMarketCapGate, p.GenerativeMarketCapGate},
		{keyGenMaxChunks, p.GenerativeMaxChunks},
		{keyGenTokenBudget, p.GenerativeTokenBudget},
		{keyGenDefaultConf, p.GenerativeDefaultConfidence},
		{keyAllowOffTaxonomy, p.AllowOffTaxonomy},
		{keyStrategyTimeout, p.StrategyTimeout.String()},
		{keyNewsLookback, p.NewsLookback.String()},
		{keySocialLookback, p.SocialLookback.String()},
		{keyPostProcessors, p.Processors},
		{keyDisabledStrategies, disabled},

		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},

		{keyHTTPTimeout, settings.Providers.HTTPTimeout.String()},
		{keyRateSEC, settings.Rates.SEC.String()},
		{keyRateYahoo, settings.Rates.Yahoo.String()},
		{keyRateLLM, settings.Rates.LLM.String()},
		{keyRateGDELT, settings.Rates.GDELT.String()},
		{keyRatePatentsView, settings.Rates.PatentsView.String()},
		{keyRateStockTwits, settings.Rates.StockTwits.String()},

		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},

		{keyCacheEnabled, settings.Cache.Enabled},
		{keyCacheDir, settings.Cache.Dir},
		{keyCacheProfileTTL, settings.Cache.ProfileTTL.String()},
		{keyCacheQuarterlyTTL, settings.Cache.QuarterlyTTL.String()},
		{keyCacheAnnualTTL, settings.Cache.AnnualTTL.String()},
		{keyCachePatentTTL, settings.Cache.PatentTTL.String()},
		{keyCacheNewsTTL, settings.Cache.NewsTTL.String()},

		{keyBatchConcurrency, settings.Batch.Concurrency},
		{keyBatchMaxFailures, settings.Batch.MaxFailures},
		{keyBatchCountEmpty, settings.Batch.CountEmptyAsFailure},

		{keySchedulerEnabled, settings.Scheduler.Enabled},
	}
	for id, taskCfg := range settings.Scheduler.TaskConfigs {
		values = append(values,
			keyValue{taskKey(id, "enabled"), taskCfg.Enabled},
			keyValue{taskKey(id, "schedule"), taskCfg.Schedule},
		)
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Credentials equal to their environment value stay out of the file.
	keyVars := domain.APIKeyEnvVars()
	secrets := []struct {
		key, value, envVar string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, keyVars[settings.Embedding.Provider]},
		{keyLLMAPIKey, settings.LLM.APIKey, keyVars[settings.LLM.Provider]},
		{keyPatentsViewKey, settings.Providers.PatentsViewAPIKey, EnvPatentsViewKey},
		{keySECEmail, settings.Providers.SECEmail, EnvSECEmail},
		{keyPostgresDSN, settings.Storage.PostgresDSN, EnvPostgresDSN},
	}
	for _, sec := range secrets {
		if sec.value == "" || (sec.envVar != "" && sec.value == s.env(sec.envVar)) {
			continue
		}
		if err := s.configStore.Set(sec.key, sec.value); err != nil {
			return fmt.Errorf("save %s: %w", sec.key, err)
		}
	}

	return s.configStore.Save()
}

// Set parses value for key, validates the resulting settings and persists
// the single key.
func (s *SettingsService) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	candidate := s.load(overlay{ConfigStore: s.configStore, key: key, value: parsed})
	if err := s.check(&candidate); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// Keys returns every key accepted by Set.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" && provider == settings.Embedding.Provider {
		apiKey = settings.Embedding.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		if name, ok := domain.APIKeyEnvVars()[provider]; ok {
			apiKey = s.env(name)
		}
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrNoCredential, provider)
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

const defaultOllamaURL = "http://localhost:11434"

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if apiKey == "" && provider == settings.LLM.Provider {
		apiKey = settings.LLM.APIKey
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		if name, ok := domain.APIKeyEnvVars()[provider]; ok {
			apiKey = s.env(name)
		}
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrNoCredential, provider)
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

// check validates struct tags and cron schedules.
func (s *SettingsService) check(settings *domain.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrConfigInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}
	for id, taskCfg := range settings.Scheduler.TaskConfigs {
		if !taskCfg.Enabled {
			continue
		}
		if _, err := cron.ParseStandard(taskCfg.Schedule); err != nil {
			return fmt.Errorf("%w: scheduler task %s: %v", domain.ErrConfigInvalid, id, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func taskKey(taskID, field string) string {
	return "scheduler." + strings.ReplaceAll(taskID, "-", "_") + "." + field
}

func parseValue(kind valueKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return value, nil
	}
}

// reader reads typed values with defaults from a ConfigStore.
type reader struct {
	store driven.ConfigStore
}

func (r reader) string(key, defaultVal string) string {
	val := r.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (r reader) int(key string, defaultVal int) int {
	if _, exists := r.store.Get(key); !exists {
		return defaultVal
	}
	return r.store.GetInt(key)
}

func (r reader) float(key string, defaultVal float64) float64 {
	if _, exists := r.store.Get(key); !exists {
		return defaultVal
	}
	return r.store.GetFloat(key)
}

func (r reader) bool(key string, defaultVal bool) bool {
	if _, exists := r.store.Get(key); !exists {
		return defaultVal
	}
	return r.store.GetBool(key)
}

func (r reader) duration(key string, defaultVal time.Duration) time.Duration {
	val := r.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (r reader) list(key string, defaultVal []string) []string {
	if _, exists := r.store.Get(key); !exists {
		return defaultVal
	}
	return r.store.GetStringSlice(key)
}

func (r reader) provider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := r.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// overlay shadows one key of a ConfigStore with a pending value.
type overlay struct {
	driven.ConfigStore
	key   string
	value any
}

func (o overlay) Get(key string) (any, bool) {
	if key == o.key {
		return o.value, true
	}
	return o.ConfigStore.Get(key)
}

func (o overlay) GetString(key string) string {
	if key != o.key {
		return o.ConfigStore.GetString(key)
	}
	if s, ok := o.value.(string); ok {
		return s
	}
	return fmt.Sprint(o.value)
}

func (o overlay) GetInt(key string) int {
	if key != o.key {
		return o.ConfigStore.GetInt(key)
	}
	i, _ := o.value.(int)
	return i
}

func (o overlay) GetFloat(key string) float64 {
	if key != o.key {
		return o.ConfigStore.GetFloat(key)
	}
	switch v := o.value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (o overlay) GetBool(key string) bool {
	if key != o.key {
		return o.ConfigStore.GetBool(key)
	}
	b, _ := o.value.(bool)
	return b
}

func (o overlay) GetStringSlice(key string) []string {
	if key != o.key {
		return o.ConfigStore.GetStringSlice(key)
	}
	s, _ := o.value.([]string)
	return s
}
