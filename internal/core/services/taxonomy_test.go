package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestTaxonomyStore_Embedded(t *testing.T) {
	catalog := testCatalog(t)
	embedder := newKeywordEmbedder()
	store := NewTaxonomyStore(catalog, embedder)

	tax, err := store.Embedded(context.Background())
	require.NoError(t, err)
	assert.True(t, tax.HasVectors())
	assert.False(t, store.Taxonomy().HasVectors(), "catalogue taxonomy stays plain")

	ai, ok := tax.Lookup("artificial intelligence")
	require.True(t, ok)
	assert.Equal(t, []float32{2, 0, 0, 0, 0}, ai.Vector)

	again, err := store.Embedded(context.Background())
	require.NoError(t, err)
	assert.Same(t, tax, again)
	assert.Equal(t, 1, embedder.batches)
	assert.Same(t, catalog, store.Catalog())
}

func TestTaxonomyStore_NilEmbedder(t *testing.T) {
	store := NewTaxonomyStore(testCatalog(t), nil)
	_, err := store.Embedded(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestTaxonomyStore_FailureIsRetried(t *testing.T) {
	embedder := newKeywordEmbedder()
	embedder.err = errBoom
	store := NewTaxonomyStore(testCatalog(t), embedder)

	_, err := store.Embedded(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, errBoom)

	embedder.err = nil
	tax, err := store.Embedded(context.Background())
	require.NoError(t, err)
	assert.True(t, tax.HasVectors())
	assert.Equal(t, 2, embedder.batches)
}
