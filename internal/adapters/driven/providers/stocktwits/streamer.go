// Package stocktwits fetches live symbol streams from StockTwits.
package stocktwits

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure Streamer implements the interface.
var _ driven.SocialStreamer = (*Streamer)(nil)

// ProviderName is stored as SocialMessage.Source.
const ProviderName = "stocktwits"

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.stocktwits.com/api/2"

const createdAtLayout = "2006-01-02T15:04:05Z"

// Streamer reads the latest messages of a symbol stream. Responses are
// never cached: collection exists to capture what is new.
type Streamer struct {
	client  *httpclient.Client
	baseURL string
}

// New creates a streamer. An empty baseURL uses the public API.
func New(client *httpclient.Client, baseURL string) *Streamer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Streamer{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name returns the platform name.
func (s *Streamer) Name() string {
	return ProviderName
}

type streamResponse struct {
	Response struct {
		Status int `json:"status"`
	} `json:"response"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Messages []struct {
		ID        int64  `json:"id"`
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		Entities  struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

// Stream returns the most recent messages for ticker, newest first.
func (s *Streamer) Stream(ctx context.Context, ticker string) ([]domain.SocialMessage, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, fmt.Errorf("stocktwits: %w: empty ticker", domain.ErrInvalidTicker)
	}

	var resp streamResponse
	err := s.client.GetJSON(ctx, httpclient.Request{
		URL: fmt.Sprintf("%s/streams/symbol/%s.json", s.baseURL, url.PathEscape(symbol)),
	}, &resp)
	if err != nil {
		if httpclient.IsStatus(err, 404) {
			return nil, fmt.Errorf("stocktwits: %s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stocktwits: %s: %w", symbol, err)
	}
	if resp.Response.Status != 200 {
		msg := "unexpected status"
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Message
		}
		return nil, fmt.Errorf("stocktwits: %s: status %d: %s", symbol, resp.Response.Status, msg)
	}

	msgs := make([]domain.SocialMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		created, err := time.Parse(createdAtLayout, m.CreatedAt)
		if err != nil {
			created, err = time.Parse(time.RFC3339, m.CreatedAt)
			if err != nil {
				continue
			}
		}
		var sentiment domain.Sentiment
		if m.Entities.Sentiment != nil {
			sentiment = domain.ParseSentiment(m.Entities.Sentiment.Basic)
		}
		msgs = append(msgs, domain.SocialMessage{
			Ticker:    symbol,
			Source:    ProviderName,
			MessageID: strconv.FormatInt(m.ID, 10),
			Body:      strings.TrimSpace(m.Body),
			Sentiment: sentiment,
			CreatedAt: created.UTC(),
		})
	}
	return msgs, nil
}
