// Package social serves collected social messages to the extraction
// pipeline from the social store.
package social

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SocialProvider = (*Provider)(nil)

// ProviderName identifies the store-backed provider in Unavailable descriptions.
const ProviderName = "social"

// Provider reads bullish and neutral messages collected earlier.
type Provider struct {
	store driven.SocialStore
	now   func() time.Time
}

// New creates a provider over store.
func New(store driven.SocialStore) *Provider {
	return &Provider{store: store, now: time.Now}
}

// FetchSocial returns non-bearish messages created within lookback.
// No collected messages is reported as empty.
func (p *Provider) FetchSocial(ctx context.Context, ticker string, lookback time.Duration) domain.Outcome[domain.SocialSignal] {
	if p.store == nil {
		return domain.Missing[domain.SocialSignal](ProviderName, domain.ReasonNoCredential, domain.ErrMissingService)
	}
	symbol := strings.ToUpper(strings.TrimSpace(ticker))

	since := time.Time{}
	if lookback > 0 {
		since = p.now().Add(-lookback)
	}
	msgs, err := p.store.Messages(ctx, symbol, since, false)
	if err != nil {
		return domain.Missing[domain.SocialSignal](ProviderName, domain.ReasonFor(err), err)
	}

	kept := msgs[:0]
	for _, m := range msgs {
		if m.Sentiment != domain.SentimentBearish {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return domain.Missing[domain.SocialSignal](ProviderName, domain.ReasonEmpty, nil)
	}
	return domain.Available(domain.SocialSignal{Messages: kept})
}
