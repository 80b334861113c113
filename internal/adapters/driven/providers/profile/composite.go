// Package profile merges company profiles from several providers.
package profile

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Composite implements the interface.
var _ driven.ProfileProvider = (*Composite)(nil)

// ProviderName identifies the composite when every provider is missing.
const ProviderName = "profile"

// Composite queries every provider concurrently and merges the results in
// provider order: the first non-empty field wins.
type Composite struct {
	providers []driven.ProfileProvider
}

// NewComposite creates a composite. Nil providers are ignored.
func NewComposite(providers ...driven.ProfileProvider) *Composite {
	c := &Composite{}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// FetchProfile returns the merged profile. It is unavailable only when no
// provider produced anything; the last provider's reason is reported then.
func (c *Composite) FetchProfile(ctx context.Context, ticker string) domain.Outcome[domain.CompanyProfile] {
	if len(c.providers) == 0 {
		return domain.Missing[domain.CompanyProfile](ProviderName, domain.ReasonNoCredential, domain.ErrMissingService)
	}

	outcomes := make([]domain.Outcome[domain.CompanyProfile], len(c.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range c.providers {
		g.Go(func() error {
			outcomes[i] = p.FetchProfile(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()

	var (
		merged domain.CompanyProfile
		found  bool
		last   domain.Unavailable
	)
	for _, out := range outcomes {
		p, ok := out.Get()
		if !ok {
			last = out.Unavailable()
			logger.Debug("profile: %s: %s", ticker, last)
			continue
		}
		merged = merged.Merge(p)
		found = true
	}
	if !found {
		return domain.MissingFrom[domain.CompanyProfile](last)
	}
	if merged.Ticker == "" {
		merged.Ticker = strings.ToUpper(strings.TrimSpace(ticker))
	}
	return domain.Available(merged)
}
