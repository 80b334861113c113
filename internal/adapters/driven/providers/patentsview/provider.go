// Package patentsview searches granted patents by assignee through the
// PatentsView search API.
package patentsview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.PatentProvider = (*Provider)(nil)

// ProviderName identifies PatentsView in Unavailable descriptions.
const ProviderName = "patentsview"

// DefaultBaseURL is the patent search endpoint.
const DefaultBaseURL = "https://search.patentsview.org/api/v1/patent/"

// DefaultPageSize is the number of patents requested.
const DefaultPageSize = 100

// Config holds the API key, endpoint override and cache lifetime.
type Config struct {
	APIKey   string
	BaseURL  string
	PageSize int
	TTL      time.Duration
}

// Provider is the PatentsView patent provider.
type Provider struct {
	client *httpclient.Client
	cfg    Config
}

// New creates the provider. Without an API key every call reports
// no_credential.
func New(client *httpclient.Client, cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Provider{client: client, cfg: cfg}
}

type searchResponse struct {
	Error   bool `json:"error"`
	Count   int  `json:"count"`
	Patents []struct {
		ID    string `json:"patent_id"`
		Title string `json:"patent_title"`
		CPC   []struct {
			GroupID    string `json:"cpc_group_id"`
			SubclassID string `json:"cpc_subclass_id"`
		} `json:"cpc_at_issue"`
	} `json:"patents"`
}

// FetchPatents returns titles and deduplicated CPC group codes of the most
// recent patents whose assignee organisation contains the cleaned name.
func (p *Provider) FetchPatents(ctx context.Context, companyName string) domain.Outcome[domain.PatentSignal] {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return domain.Missing[domain.PatentSignal](ProviderName, domain.ReasonNoCredential, domain.ErrNoCredential)
	}
	name := CleanCompanyName(companyName)
	if name == "" {
		return domain.Missing[domain.PatentSignal](ProviderName, domain.ReasonNotFound,
			fmt.Errorf("%w: empty company name", domain.ErrInvalidInput))
	}

	reqURL, err := p.searchURL(name)
	if err != nil {
		return domain.Missing[domain.PatentSignal](ProviderName, domain.ReasonFailed, err)
	}

	var resp searchResponse
	err = p.client.GetJSON(ctx, httpclient.Request{
		URL:      reqURL,
		Header:   http.Header{"X-Api-Key": {p.cfg.APIKey}},
		CacheKey: "patentsview:" + strings.ToLower(name),
		TTL:      p.cfg.TTL,
	}, &resp)
	if err != nil {
		return domain.MissingFrom[domain.PatentSignal](httpclient.Classify(ProviderName, err))
	}
	if resp.Error {
		return domain.Missing[domain.PatentSignal](ProviderName, domain.ReasonFailed,
			fmt.Errorf("patentsview reported an error for %q", name))
	}

	signal := domain.PatentSignal{Count: len(resp.Patents)}
	seen := make(map[string]struct{})
	for _, pat := range resp.Patents {
		if title := strings.TrimSpace(pat.Title); title != "" {
			signal.Titles = append(signal.Titles, title)
		}
		for _, c := range pat.CPC {
			code := strings.TrimSpace(c.GroupID)
			if code == "" {
				code = strings.TrimSpace(c.SubclassID)
			}
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			signal.CPCCodes = append(signal.CPCCodes, code)
		}
	}

	logger.Debug("patentsview: %q: %d patents, %d unique CPC codes", name, signal.Count, len(signal.CPCCodes))
	return domain.Available(signal)
}

func (p *Provider) searchURL(name string) (string, error) {
	params := map[string]any{
		"q": map[string]any{"_contains": map[string]string{"assignees.assignee_organization": name}},
		"f": []string{"patent_id", "patent_title", "patent_date", "cpc_at_issue.cpc_group_id", "cpc_at_issue.cpc_subclass_id"},
		"o": map[string]int{"size": p.cfg.PageSize},
		"s": []map[string]string{{"patent_date": "desc"}},
	}

	q := url.Values{}
	for _, key := range []string{"q", "f", "o", "s"} {
		raw, err := json.Marshal(params[key])
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", key, err)
		}
		q.Set(key, string(raw))
	}
	return p.cfg.BaseURL + "?" + q.Encode(), nil
}

// companySuffixes are stripped, in order, before searching by assignee.
var companySuffixes = []string{
	" Inc.", " Inc", " Corp.", " Corp", " Corporation",
	" Ltd.", " Ltd", " Limited", " LLC", " L.L.C.",
	" PLC", " plc", " N.V.", " S.A.", " AG", " SE",
	" Co.", " Co", " Company", " Group",
	",", ".",
}

// CleanCompanyName removes legal suffixes such as "Inc." and "Corp".
func CleanCompanyName(name string) string {
	cleaned := strings.TrimSpace(name)
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, suffix))
		}
	}
	return cleaned
}
