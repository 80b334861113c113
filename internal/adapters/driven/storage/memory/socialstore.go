package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure SocialStore implements the interface.
var _ driven.SocialStore = (*SocialStore)(nil)

// SocialStore is an in-memory implementation of driven.SocialStore.
type SocialStore struct {
	mu       sync.RWMutex
	messages []domain.SocialMessage
	seen     map[string]struct{}
}

// NewSocialStore creates a new in-memory social store.
func NewSocialStore() *SocialStore {
	return &SocialStore{seen: make(map[string]struct{})}
}

// SaveMessages inserts messages not already stored for the same source and id.
func (s *SocialStore) SaveMessages(_ context.Context, msgs []domain.SocialMessage) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, m := range msgs {
		key := m.Source + "\x00" + m.MessageID
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		m.Ticker = tickerKey(m.Ticker)
		m.CreatedAt = m.CreatedAt.UTC()
		s.messages = append(s.messages, m)
		inserted++
	}
	return inserted, nil
}

// Messages returns the ticker's messages created at or after since, newest first.
func (s *SocialStore) Messages(_ context.Context, ticker string, since time.Time, includeBearish bool) ([]domain.SocialMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := tickerKey(ticker)
	var out []domain.SocialMessage
	// Walk newest insert first so equal timestamps keep insertion-desc order.
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Ticker != key || m.CreatedAt.Before(since) {
			continue
		}
		if !includeBearish && m.Sentiment == domain.SentimentBearish {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Len returns the number of stored messages.
func (s *SocialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
