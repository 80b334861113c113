// Package yahoo fetches company profiles from the Yahoo Finance quote
// summary API.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.ProfileProvider = (*Provider)(nil)

// ProviderName identifies Yahoo Finance in Unavailable descriptions.
const ProviderName = "yahoo"

// Yahoo endpoints.
const (
	DefaultBaseURL  = "https://query2.finance.yahoo.com"
	DefaultCrumbURL = "https://query2.finance.yahoo.com/v1/test/getcrumb"
	modules         = "assetProfile,price"
)

// BrowserUserAgent is sent because the API rejects unidentified clients.
const BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// Config holds endpoint overrides and the cache lifetime.
type Config struct {
	BaseURL string

	// CrumbURL issues the anti-forgery token. Empty disables the crumb.
	CrumbURL string

	TTL time.Duration
}

// DefaultConfig returns the public endpoints.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		CrumbURL: DefaultCrumbURL,
		TTL:      24 * time.Hour,
	}
}

// Provider is the Yahoo Finance profile provider.
type Provider struct {
	client *httpclient.Client
	cfg    Config

	mu    sync.Mutex
	crumb string
	tried bool
}

// New creates the provider. The client's HTTP transport should keep a
// cookie jar when the crumb is enabled.
func New(client *httpclient.Client, cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Provider{client: client, cfg: cfg}
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector              string `json:"sector"`
				Industry            string `json:"industry"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			Price struct {
				ShortName    string   `json:"shortName"`
				LongName     string   `json:"longName"`
				ExchangeName string   `json:"exchangeName"`
				MarketCap    rawValue `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchProfile returns name, sector, industry, market cap, exchange and
// business summary. A quote without a name counts as not found.
func (p *Provider) FetchProfile(ctx context.Context, ticker string) domain.Outcome[domain.CompanyProfile] {
	symbol := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(ticker), ".", "-"))

	q := url.Values{}
	q.Set("modules", modules)
	if crumb := p.session(ctx); crumb != "" {
		q.Set("crumb", crumb)
	}

	var resp quoteSummary
	err := p.client.GetJSON(ctx, httpclient.Request{
		URL:      fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(symbol), q.Encode()),
		CacheKey: "yahoo:profile:" + symbol,
		TTL:      p.cfg.TTL,
	}, &resp)
	if err != nil {
		return domain.MissingFrom[domain.CompanyProfile](httpclient.Classify(ProviderName, err))
	}

	summary := resp.QuoteSummary
	if summary.Error != nil || len(summary.Result) == 0 {
		reason := "empty result"
		if summary.Error != nil {
			reason = summary.Error.Description
		}
		return domain.Missing[domain.CompanyProfile](ProviderName, domain.ReasonNotFound,
			fmt.Errorf("%w: %s: %s", domain.ErrNotFound, symbol, reason))
	}

	r := summary.Result[0]
	if strings.TrimSpace(r.Price.ShortName) == "" {
		return domain.Missing[domain.CompanyProfile](ProviderName, domain.ReasonNotFound,
			fmt.Errorf("%w: %s has no name", domain.ErrNotFound, symbol))
	}

	return domain.Available(domain.CompanyProfile{
		Ticker:          strings.ToUpper(strings.TrimSpace(ticker)),
		Name:            strings.TrimSpace(r.Price.ShortName),
		Sector:          r.AssetProfile.Sector,
		Industry:        r.AssetProfile.Industry,
		MarketCap:       r.Price.MarketCap.Raw,
		Exchange:        r.Price.ExchangeName,
		BusinessSummary: strings.TrimSpace(r.AssetProfile.LongBusinessSummary),
	})
}

// session fetches the crumb once per provider. Failures are logged and the
// request proceeds without one.
func (p *Provider) session(ctx context.Context) string {
	if p.cfg.CrumbURL == "" {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tried {
		return p.crumb
	}
	p.tried = true

	body, err := p.client.Get(ctx, httpclient.Request{URL: p.cfg.CrumbURL})
	if err != nil {
		logger.Debug("yahoo: crumb unavailable: %v", err)
		return ""
	}
	if crumb := strings.TrimSpace(string(body)); crumb != "" && !strings.ContainsAny(crumb, "<{ ") {
		p.crumb = crumb
	}
	return p.crumb
}
