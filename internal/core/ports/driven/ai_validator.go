package driven

import "github.com/custodia-labs/stockthemes/internal/core/domain"

// AIConfigValidator dials the configured AI providers. Settings that name
// no provider pass without a network call.
type AIConfigValidator interface {
	ValidateEmbedding(cfg *domain.EmbeddingSettings) error
	ValidateLLM(cfg *domain.LLMSettings) error
}
