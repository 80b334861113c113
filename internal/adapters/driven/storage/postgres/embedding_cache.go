package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// embeddingCache implements driven.EmbeddingCache on a pgvector column.
type embeddingCache struct {
	store *Store
}

var _ driven.EmbeddingCache = (*embeddingCache)(nil)

// Get returns a cached vector for model and text.
func (c *embeddingCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	var vec pgvector.Vector
	err := c.store.pool.QueryRow(ctx,
		"SELECT embedding FROM embedding_cache WHERE model = $1 AND text_hash = $2",
		model, textHash(text)).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying embedding: %w", err)
	}
	return vec.Slice(), true, nil
}

// Put stores a vector, replacing any previous one. pgvector rejects empty
// vectors, so those are not cached.
func (c *embeddingCache) Put(ctx context.Context, model, text string, vector []float32) error {
	if len(vector) == 0 {
		return nil
	}
	_, err := c.store.pool.Exec(ctx, `
		INSERT INTO embedding_cache (model, text_hash, embedding, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (model, text_hash) DO UPDATE SET embedding = EXCLUDED.embedding, created_at = EXCLUDED.created_at
	`, model, textHash(text), pgvector.NewVector(vector), c.store.now().UTC())
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
