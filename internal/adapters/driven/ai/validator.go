package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// pingTimeout bounds each connectivity check.
const pingTimeout = 5 * time.Second

const validateHint = "run 'stockthemes settings validate' to check"

// ConfigValidator checks provider settings by building the client and
// pinging it. Unconfigured settings are valid.
type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(context.Background(), settings)
}

func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	return ValidateLLMConfig(context.Background(), settings)
}

// ValidateEmbeddingConfig connects to the embedding provider and disconnects.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := connect(ctx, func() (driven.EmbeddingService, error) {
		return CreateEmbeddingService(ctx, settings)
	})
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLMConfig connects to the LLM provider and disconnects.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := connect(ctx, func() (driven.LLMService, error) {
		return CreateLLMService(ctx, settings)
	})
	if err != nil {
		return err
	}
	return svc.Close()
}

// CreateAndValidateEmbeddingService returns a reachable embedding service,
// nil when none is configured, or an ErrEmbeddingUnavailable error.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	svc, err := connect(ctx, func() (driven.EmbeddingService, error) {
		return CreateEmbeddingService(ctx, settings)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w, %s", domain.ErrEmbeddingUnavailable, err, validateHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService returns a reachable LLM service, nil when
// none is configured, or an ErrLLMUnavailable error.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	svc, err := connect(ctx, func() (driven.LLMService, error) {
		return CreateLLMService(ctx, settings)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w, %s", domain.ErrLLMUnavailable, err, validateHint)
	}
	return svc, nil
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// connect builds a client and pings it within pingTimeout. A client that
// fails the ping is closed.
func connect[S pingCloser](ctx context.Context, build func() (S, error)) (S, error) {
	var zero S
	svc, err := build()
	if err != nil {
		return zero, err
	}
	if any(svc) == nil {
		return zero, fmt.Errorf("%w: provider not configured", domain.ErrConfigInvalid)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return zero, fmt.Errorf("unreachable: %w", err)
	}
	return svc, nil
}
