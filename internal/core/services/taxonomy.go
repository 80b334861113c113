package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// TaxonomyStore owns the loaded catalogue and lazily attaches reference
// vectors to its taxonomy.
type TaxonomyStore struct {
	catalog  *domain.Catalog
	embedder driven.EmbeddingService

	mu       sync.Mutex
	embedded *domain.Taxonomy
}

// NewTaxonomyStore creates a store for catalog. embedder may be nil, in
// which case Embedded always fails with ErrEmbeddingUnavailable.
func NewTaxonomyStore(catalog *domain.Catalog, embedder driven.EmbeddingService) *TaxonomyStore {
	return &TaxonomyStore{catalog: catalog, embedder: embedder}
}

// Catalog returns the loaded catalogue.
func (s *TaxonomyStore) Catalog() *domain.Catalog {
	return s.catalog
}

// Taxonomy returns the taxonomy without vectors.
func (s *TaxonomyStore) Taxonomy() *domain.Taxonomy {
	return s.catalog.Taxonomy
}

// Embedded returns the taxonomy with one reference vector per theme.
// A successful embedding is cached; failures are retried on the next call.
func (s *TaxonomyStore) Embedded(ctx context.Context) (*domain.Taxonomy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embedded != nil {
		return s.embedded, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	tax := s.catalog.Taxonomy
	if tax.HasVectors() {
		s.embedded = tax
		return tax, nil
	}

	texts := make([]string, tax.Len())
	for i := range texts {
		texts[i] = tax.Theme(i).EmbeddingText()
	}

	logger.Debug("Embedding %d taxonomy themes with %s", len(texts), s.embedder.ModelName())
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embed taxonomy: %w", domain.ErrEmbeddingUnavailable, err)
	}

	embedded, err := tax.WithVectors(vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	s.embedded = embedded
	return embedded, nil
}
