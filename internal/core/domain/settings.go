package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMoonshot is the Moonshot (Kimi) OpenAI-compatible API.
	AIProviderMoonshot AIProvider = "moonshot"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderMoonshot, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != AIProviderOllama
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderMoonshot:
		return "Moonshot Kimi (cloud, OpenAI-compatible)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai gemini"`

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible servers).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Dimensions overrides the output dimensionality where supported.
	Dimensions int `validate:"gte=0"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai moonshot anthropic gemini"`

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible servers).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// PipelineConfig is the value object that parameterises one extraction
// pipeline. It is passed into the extraction service at construction time.
type PipelineConfig struct {
	// MaxWords is the chunk size in words.
	MaxWords int `validate:"gt=0,lte=5000"`

	// SimilarityThreshold is the exclusive lower bound for semantic filtering.
	SimilarityThreshold float64 `validate:"gte=0,lte=1"`

	// MaxThemes caps the themes kept per company.
	MaxThemes int `validate:"gt=0,lte=100"`

	// GenerativeMarketCapGate is the minimum market cap for generative extraction.
	GenerativeMarketCapGate float64 `validate:"gte=0"`

	// GenerativeMaxChunks caps the filtered chunks sent to the model.
	GenerativeMaxChunks int `validate:"gt=0"`

	// GenerativeTokenBudget caps prompt passage tokens.
	GenerativeTokenBudget int `validate:"gt=0"`

	// GenerativeDefaultConfidence applies when the model omits a confidence.
	GenerativeDefaultConfidence float64 `validate:"gte=0,lte=1"`

	// AllowOffTaxonomy keeps generative themes that do not resolve to the
	// taxonomy instead of discarding them.
	AllowOffTaxonomy bool

	// StrategyTimeout bounds each strategy invocation.
	StrategyTimeout time.Duration `validate:"gt=0"`

	// NewsLookback and SocialLookback bound external-signal windows.
	NewsLookback   time.Duration `validate:"gt=0"`
	SocialLookback time.Duration `validate:"gt=0"`

	// Processors is the ordered post-processor list applied to filing text.
	// The chunker must come first; later stages only refine its chunks.
	Processors []string `validate:"min=1,unique,chunkerfirst,dive,oneof=chunker dedupe"`

	// DisabledStrategies lists strategies to skip.
	DisabledStrategies []Source `validate:"dive,oneof=code_mapping pattern semantic news patent social generative"`
}

// ChunkerStage is the post-processor that turns filing text into chunks.
const ChunkerStage = "chunker"

// StrategyEnabled returns true unless s is listed in DisabledStrategies.
func (c PipelineConfig) StrategyEnabled(s Source) bool {
	for _, d := range c.DisabledStrategies {
		if d == s {
			return false
		}
	}
	return true
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxWords:                    200,
		SimilarityThreshold:         0.6,
		MaxThemes:                   10,
		GenerativeMarketCapGate:     1e9,
		GenerativeMaxChunks:         10,
		GenerativeTokenBudget:       3000,
		GenerativeDefaultConfidence: 0.7,
		AllowOffTaxonomy:            false,
		StrategyTimeout:             60 * time.Second,
		NewsLookback:                90 * 24 * time.Hour,
		SocialLookback:              30 * 24 * time.Hour,
		Processors:                  []string{"chunker"},
	}
}

// ProviderSettings holds data-provider credentials and HTTP behaviour.
type ProviderSettings struct {
	// SECEmail is sent in the SEC User-Agent header, as SEC requires.
	SECEmail string `validate:"omitempty,email"`

	// PatentsViewAPIKey enables the patent strategy when set.
	PatentsViewAPIKey string

	// HTTPTimeout bounds each provider request.
	HTTPTimeout time.Duration `validate:"gt=0"`
}

// RateSettings holds the minimum interval between requests per provider.
type RateSettings struct {
	SEC         time.Duration `validate:"gte=0"`
	Yahoo       time.Duration `validate:"gte=0"`
	LLM         time.Duration `validate:"gte=0"`
	GDELT       time.Duration `validate:"gte=0"`
	PatentsView time.Duration `validate:"gte=0"`
	StockTwits  time.Duration `validate:"gte=0"`
}

// StorageBackend selects the result store implementation.
type StorageBackend string

// Storage backends.
const (
	StorageSQLite   StorageBackend = "sqlite"
	StoragePostgres StorageBackend = "postgres"
)

// StorageSettings selects and configures the result store.
type StorageSettings struct {
	Backend     StorageBackend `validate:"oneof=sqlite postgres"`
	DataDir     string
	PostgresDSN string `validate:"required_if=Backend postgres"`
}

// CacheSettings configures the provider response cache.
type CacheSettings struct {
	Enabled      bool
	Dir          string
	ProfileTTL   time.Duration `validate:"gte=0"`
	QuarterlyTTL time.Duration `validate:"gte=0"`
	AnnualTTL    time.Duration `validate:"gte=0"`
	PatentTTL    time.Duration `validate:"gte=0"`
	NewsTTL      time.Duration `validate:"gte=0"`
}

// BatchSettings configures the batch driver.
type BatchSettings struct {
	// Concurrency is the number of companies processed at once.
	Concurrency int `validate:"gt=0,lte=64"`

	// MaxFailures stops the batch after this many failed tickers. 0 disables the budget.
	MaxFailures int `validate:"gte=0"`

	// CountEmptyAsFailure treats an empty theme set as a failed ticker.
	CountEmptyAsFailure bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Pipeline  PipelineConfig
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Providers ProviderSettings
	Rates     RateSettings
	Storage   StorageSettings
	Cache     CacheSettings
	Batch     BatchSettings
	Scheduler SchedulerConfig
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; API keys come from the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Pipeline:  DefaultPipelineConfig(),
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Providers: ProviderSettings{
			HTTPTimeout: 30 * time.Second,
		},
		Rates: RateSettings{
			SEC:         150 * time.Millisecond,
			Yahoo:       500 * time.Millisecond,
			LLM:         500 * time.Millisecond,
			GDELT:       time.Second,
			PatentsView: 1500 * time.Millisecond,
			StockTwits:  time.Second,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Cache: CacheSettings{
			Enabled:      true,
			ProfileTTL:   24 * time.Hour,
			QuarterlyTTL: 24 * time.Hour,
			AnnualTTL:    168 * time.Hour,
			PatentTTL:    168 * time.Hour,
			NewsTTL:      12 * time.Hour,
		},
		Batch: BatchSettings{
			Concurrency: 4,
			MaxFailures: 0,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMoonshot,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "gemini-embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderMoonshot:  "kimi-k2-5",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}

// APIKeyEnvVars returns the environment variable holding each provider's key.
func APIKeyEnvVars() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    "OPENAI_API_KEY",
		AIProviderMoonshot:  "MOONSHOT_API_KEY",
		AIProviderAnthropic: "ANTHROPIC_API_KEY",
		AIProviderGemini:    "GEMINI_API_KEY",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"gemini-embedding-001": 768,
	}
}
