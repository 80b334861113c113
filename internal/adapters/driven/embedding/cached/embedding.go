// Package cached wraps an embedding service with a persistent vector cache
// keyed by model and text.
package cached

import (
	"context"
	"fmt"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService serves cached vectors and embeds only the misses.
// Cache failures are logged and treated as misses.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache driven.EmbeddingCache
}

// New wraps inner with cache.
func New(inner driven.EmbeddingService, cache driven.EmbeddingCache) *EmbeddingService {
	return &EmbeddingService{inner: inner, cache: cache}
}

// Embed returns the vector for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input, in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	model := s.inner.ModelName()

	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		vec, ok, err := s.cache.Get(ctx, model, text)
		if err != nil {
			logger.Debug("embedding cache: get: %v", err)
		}
		if ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return vectors, nil
	}

	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missTexts), len(missTexts))
	fresh, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding cache: got %d vectors for %d texts", len(fresh), len(missTexts))
	}
	for j, vec := range fresh {
		vectors[missIdx[j]] = vec
		if err := s.cache.Put(ctx, model, missTexts[j], vec); err != nil {
			logger.Debug("embedding cache: put: %v", err)
		}
	}
	return vectors, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping pings the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service. The cache is owned by its store.
func (s *EmbeddingService) Close() error {
	return s.inner.Close()
}
