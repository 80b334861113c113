package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// embeddingCache implements driven.EmbeddingCache.
type embeddingCache struct {
	store *Store
}

var _ driven.EmbeddingCache = (*embeddingCache)(nil)

// Get returns a cached vector for model and text.
func (c *embeddingCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	var blob []byte
	err := c.store.db.QueryRowContext(ctx,
		"SELECT vector FROM embedding_cache WHERE model = ? AND text_hash = ?",
		model, TextHash(text)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying embedding: %w", err)
	}
	return decodeVector(blob), true, nil
}

// Put stores a vector, replacing any previous one.
func (c *embeddingCache) Put(ctx context.Context, model, text string, vector []float32) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO embedding_cache (model, text_hash, vector, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(model, text_hash) DO UPDATE SET vector = excluded.vector, created_at = excluded.created_at
	`, model, TextHash(text), encodeVector(vector), formatTime(c.store.now()))
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// TextHash is the cache key for an embedded text.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
