package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

type mockSocialStore struct {
	msgs   []domain.SocialMessage
	err    error
	ticker string
	since  time.Time
}

func (m *mockSocialStore) SaveMessages(_ context.Context, msgs []domain.SocialMessage) (int, error) {
	m.msgs = append(m.msgs, msgs...)
	return len(msgs), nil
}

func (m *mockSocialStore) Messages(_ context.Context, ticker string, since time.Time, includeBearish bool) ([]domain.SocialMessage, error) {
	m.ticker, m.since = ticker, since
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.SocialMessage
	for _, msg := range m.msgs {
		if !includeBearish && msg.Sentiment == domain.SentimentBearish {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func TestFetchSocial(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	store := &mockSocialStore{msgs: []domain.SocialMessage{
		{Ticker: "ACME", MessageID: "1", Body: "wearables", Sentiment: domain.SentimentBullish},
		{Ticker: "ACME", MessageID: "2", Body: "dump it", Sentiment: domain.SentimentBearish},
		{Ticker: "ACME", MessageID: "3", Body: "watching"},
	}}
	p := New(store)
	p.now = func() time.Time { return now }

	signal, ok := p.FetchSocial(context.Background(), "acme", 30*24*time.Hour).Get()
	require.True(t, ok)
	require.Len(t, signal.Messages, 2)
	assert.Equal(t, "1", signal.Messages[0].MessageID)
	assert.Equal(t, "3", signal.Messages[1].MessageID)
	assert.Equal(t, "ACME", store.ticker)
	assert.Equal(t, now.Add(-30*24*time.Hour), store.since)
}

func TestFetchSocial_Unavailable(t *testing.T) {
	t.Run("nothing collected", func(t *testing.T) {
		out := New(&mockSocialStore{}).FetchSocial(context.Background(), "ACME", time.Hour)
		assert.Equal(t, domain.ReasonEmpty, out.Unavailable().Reason)
	})

	t.Run("only bearish", func(t *testing.T) {
		store := &mockSocialStore{msgs: []domain.SocialMessage{{Sentiment: domain.SentimentBearish}}}
		out := New(store).FetchSocial(context.Background(), "ACME", time.Hour)
		assert.Equal(t, domain.ReasonEmpty, out.Unavailable().Reason)
	})

	t.Run("store error", func(t *testing.T) {
		out := New(&mockSocialStore{err: errors.New("disk gone")}).FetchSocial(context.Background(), "ACME", time.Hour)
		assert.Equal(t, domain.ReasonFailed, out.Unavailable().Reason)
		assert.Equal(t, ProviderName, out.Unavailable().Provider)
	})

	t.Run("no store", func(t *testing.T) {
		out := New(nil).FetchSocial(context.Background(), "ACME", time.Hour)
		assert.False(t, out.IsAvailable())
	})
}
