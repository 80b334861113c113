package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// socialStore implements driven.SocialStore.
type socialStore struct {
	store *Store
}

var _ driven.SocialStore = (*socialStore)(nil)

// SaveMessages inserts messages, skipping ones already stored for the same
// (source, message id).
func (s *socialStore) SaveMessages(ctx context.Context, msgs []domain.SocialMessage) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(`
			INSERT INTO social_messages (ticker, source, message_id, body, sentiment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (source, message_id) DO NOTHING
		`, tickerKey(m.Ticker), m.Source, m.MessageID, m.Body, string(m.Sentiment), m.CreatedAt.UTC())
	}

	results := s.store.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for _, m := range msgs {
		tag, err := results.Exec()
		if err != nil {
			return 0, fmt.Errorf("inserting message %s/%s: %w", m.Source, m.MessageID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// Messages returns the ticker's messages created at or after since, newest first.
func (s *socialStore) Messages(ctx context.Context, ticker string, since time.Time, includeBearish bool) ([]domain.SocialMessage, error) {
	query := `
		SELECT ticker, source, message_id, body, sentiment, created_at
		FROM social_messages
		WHERE ticker = $1 AND created_at >= $2`
	args := []any{tickerKey(ticker), since.UTC()}
	if !includeBearish {
		query += " AND sentiment <> $3"
		args = append(args, string(domain.SentimentBearish))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.SocialMessage
	for rows.Next() {
		var m domain.SocialMessage
		var sentiment string
		if err := rows.Scan(&m.Ticker, &m.Source, &m.MessageID, &m.Body, &sentiment, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Sentiment = domain.Sentiment(sentiment)
		m.CreatedAt = m.CreatedAt.UTC()
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}
