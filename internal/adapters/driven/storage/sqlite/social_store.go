package sqlite

import (
	"context"
	"fmt"
	"time"

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

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO social_messages (ticker, source, message_id, body, sentiment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, m := range msgs {
		res, err := stmt.ExecContext(ctx, tickerKey(m.Ticker), m.Source, m.MessageID, m.Body,
			string(m.Sentiment), formatTime(m.CreatedAt))
		if err != nil {
			return 0, fmt.Errorf("inserting message %s/%s: %w", m.Source, m.MessageID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing messages: %w", err)
	}
	return inserted, nil
}

// Messages returns the ticker's messages created at or after since, newest first.
func (s *socialStore) Messages(ctx context.Context, ticker string, since time.Time, includeBearish bool) ([]domain.SocialMessage, error) {
	query := `
		SELECT ticker, source, message_id, body, sentiment, created_at
		FROM social_messages
		WHERE ticker = ? AND created_at >= ?`
	args := []any{tickerKey(ticker), formatTime(since)}
	if !includeBearish {
		query += " AND sentiment != ?"
		args = append(args, string(domain.SentimentBearish))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.SocialMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.SocialMessage
		var sentiment, createdAt string
		if err := rows.Scan(&m.Ticker, &m.Source, &m.MessageID, &m.Body, &sentiment, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Sentiment = domain.Sentiment(sentiment)
		m.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}
