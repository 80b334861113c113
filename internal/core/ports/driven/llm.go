package driven

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// LLMService is a plain completion endpoint. A nil service turns the
// generative strategy off.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string

	// Ping makes the cheapest call the provider offers.
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions are the sampling knobs shared by every provider. Zero
// MaxTokens leaves the provider default in place.
type GenerateOptions struct {
	System      string
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// ThemeGenerator asks a language model for investment themes. Model errors
// and unparseable replies come back as an unavailable outcome.
type ThemeGenerator interface {
	GenerateThemes(ctx context.Context, req domain.GenerationRequest) domain.Outcome[[]domain.GeneratedTheme]
}
