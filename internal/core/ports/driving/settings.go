package driving

import "github.com/custodia-labs/stockthemes/internal/core/domain"

// SettingsService reads and edits the persisted configuration. Every write
// is validated first, so an invalid edit leaves the stored file untouched.
type SettingsService interface {
	// Get returns stored settings merged over defaults, with environment
	// overrides on top.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// Set edits one dotted key such as "pipeline.max_themes".
	Set(key, value string) error

	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig ping the configured
	// provider.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
