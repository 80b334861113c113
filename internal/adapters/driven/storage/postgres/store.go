// Package postgres implements the result, social and embedding stores on
// PostgreSQL with the pgvector extension.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

//go:embed schema.sql
var schema string

// Store holds the connection pool shared by the store wrappers.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// ValidateDSN checks that dsn parses as a pgx connection string.
func ValidateDSN(dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("%w: postgres DSN is empty", domain.ErrConfigInvalid)
	}
	if _, err := pgxpool.ParseConfig(dsn); err != nil {
		return fmt.Errorf("%w: postgres DSN: %w", domain.ErrConfigInvalid, err)
	}
	return nil
}

// NewStore connects, pings and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if err := ValidateDSN(dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &Store{pool: pool, now: time.Now}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return s, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ResultStore returns a ResultStore interface backed by this store.
func (s *Store) ResultStore() driven.ResultStore {
	return &resultStore{store: s}
}

// SocialStore returns a SocialStore interface backed by this store.
func (s *Store) SocialStore() driven.SocialStore {
	return &socialStore{store: s}
}

// EmbeddingCache returns an EmbeddingCache interface backed by this store.
func (s *Store) EmbeddingCache() driven.EmbeddingCache {
	return &embeddingCache{store: s}
}

func tickerKey(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var errNilResult = errors.New("nil result")
