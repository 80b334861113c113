package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
type EmbeddingCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewEmbeddingCache creates an empty cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{vectors: make(map[string][]float32)}
}

// Get returns a copy of the cached vector.
func (c *EmbeddingCache) Get(_ context.Context, model, text string) ([]float32, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[model+"\x00"+text]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Put stores a copy of vector.
func (c *EmbeddingCache) Put(_ context.Context, model, text string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[model+"\x00"+text] = slices.Clone(vector)
	return nil
}
