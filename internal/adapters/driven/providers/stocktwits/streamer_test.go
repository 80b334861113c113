package stocktwits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const streamJSON = `{"response":{"status":200},"messages":[
  {"id":3,"body":" $ACME AI wearables everywhere ","created_at":"2026-03-02T10:00:00Z","entities":{"sentiment":{"basic":"Bullish"}}},
  {"id":2,"body":"selling $ACME","created_at":"2026-03-01T09:00:00Z","entities":{"sentiment":{"basic":"Bearish"}}},
  {"id":1,"body":"no opinion","created_at":"2026-02-28T08:00:00Z","entities":{"sentiment":null}},
  {"id":0,"body":"bad date","created_at":"yesterday","entities":{}}
]}`

func TestStream(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(streamJSON))
	}))
	defer srv.Close()

	s := New(httpclient.New(ProviderName, nil), srv.URL)
	assert.Equal(t, "stocktwits", s.Name())

	msgs, err := s.Stream(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "/streams/symbol/ACME.json", path)

	require.Len(t, msgs, 3)
	assert.Equal(t, domain.SocialMessage{
		Ticker:    "ACME",
		Source:    "stocktwits",
		MessageID: "3",
		Body:      "$ACME AI wearables everywhere",
		Sentiment: domain.SentimentBullish,
		CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}, msgs[0])
	assert.Equal(t, domain.SentimentBearish, msgs[1].Sentiment)
	assert.Equal(t, domain.SentimentNeutral, msgs[2].Sentiment)
}

func TestStream_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"missing symbol", http.StatusNotFound, `{}`, true},
		{"api status", http.StatusOK, `{"response":{"status":429},"errors":[{"message":"Rate limit exceeded"}]}`, false},
		{"server error", http.StatusInternalServerError, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := New(httpclient.New(ProviderName, nil), srv.URL)
			_, err := s.Stream(context.Background(), "ACME")
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			} else {
				assert.NotErrorIs(t, err, domain.ErrNotFound)
			}
		})
	}

	t.Run("empty ticker", func(t *testing.T) {
		s := New(httpclient.New(ProviderName, nil), "")
		_, err := s.Stream(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidTicker)
	})
}
