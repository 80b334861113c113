// Package gdelt fetches recent news coverage from the GDELT DOC 2.0 API.
package gdelt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.NewsProvider = (*Provider)(nil)

// ProviderName identifies GDELT in Unavailable descriptions.
const ProviderName = "gdelt"

// DefaultBaseURL is the DOC API endpoint.
const DefaultBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"

// DefaultMaxRecords is the article list size.
const DefaultMaxRecords = 75

// Config holds the endpoint override, list size and cache lifetime.
type Config struct {
	BaseURL    string
	MaxRecords int
	TTL        time.Duration
}

// Provider is the GDELT news provider.
type Provider struct {
	client *httpclient.Client
	cfg    Config
}

// New creates the provider.
func New(client *httpclient.Client, cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = DefaultMaxRecords
	}
	return &Provider{client: client, cfg: cfg}
}

// article is one artlist entry. Themes arrive either as a list or as a
// semicolon separated string depending on the API version.
type article struct {
	Title  string          `json:"title"`
	URL    string          `json:"url"`
	Tone   json.RawMessage `json:"tone"`
	Themes json.RawMessage `json:"themes"`
}

type artList struct {
	Articles []article `json:"articles"`
}

// FetchNews returns deduplicated theme codes, titles and average tone of
// English-language articles mentioning the company within lookback.
func (p *Provider) FetchNews(ctx context.Context, companyName string, lookback time.Duration) domain.Outcome[domain.NewsSignal] {
	name := searchName(companyName)
	if name == "" {
		return domain.Missing[domain.NewsSignal](ProviderName, domain.ReasonNotFound,
			fmt.Errorf("%w: empty company name", domain.ErrInvalidInput))
	}

	span := Timespan(lookback)
	q := url.Values{}
	q.Set("query", fmt.Sprintf("%q sourcelang:eng", name))
	q.Set("mode", "artlist")
	q.Set("maxrecords", strconv.Itoa(p.cfg.MaxRecords))
	q.Set("timespan", span)
	q.Set("format", "json")
	q.Set("sort", "datedesc")

	body, err := p.client.Get(ctx, httpclient.Request{
		URL:      p.cfg.BaseURL + "?" + q.Encode(),
		CacheKey: "gdelt:" + strings.ToLower(name) + ":" + span,
		TTL:      p.cfg.TTL,
	})
	if err != nil {
		return domain.MissingFrom[domain.NewsSignal](httpclient.Classify(ProviderName, err))
	}

	// GDELT answers malformed or zero-hit queries with a plain-text notice.
	var list artList
	if err := json.Unmarshal(body, &list); err != nil {
		logger.Debug("gdelt: %q: non-JSON response treated as no coverage", name)
		return domain.Missing[domain.NewsSignal](ProviderName, domain.ReasonEmpty, nil)
	}
	if len(list.Articles) == 0 {
		return domain.Missing[domain.NewsSignal](ProviderName, domain.ReasonEmpty, nil)
	}

	signal := summarise(list.Articles)
	logger.Debug("gdelt: %q: %d articles, %d theme codes", name, len(signal.Titles), len(signal.Themes))
	return domain.Available(signal)
}

func summarise(articles []article) domain.NewsSignal {
	var signal domain.NewsSignal
	seen := make(map[string]struct{})
	var toneSum float64
	var toneCount int

	for _, a := range articles {
		if title := strings.TrimSpace(a.Title); title != "" {
			signal.Titles = append(signal.Titles, title)
		}
		for _, code := range parseThemes(a.Themes) {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			signal.Themes = append(signal.Themes, code)
		}
		if tone, ok := parseTone(a.Tone); ok {
			toneSum += tone
			toneCount++
		}
	}

	if toneCount > 0 {
		signal.Tone = toneSum / float64(toneCount)
		signal.HasTone = true
	}
	return signal
}

func parseThemes(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil
		}
		list = strings.Split(joined, ";")
	}

	out := make([]string, 0, len(list))
	for _, code := range list {
		// V2 themes carry a character offset suffix, e.g. "TECH_AI,1234".
		code, _, _ = strings.Cut(code, ",")
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// parseTone accepts a number or a numeric string.
func parseTone(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	// Tone strings are comma separated; the first field is the average tone.
	first, _, _ := strings.Cut(s, ",")
	f, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	return f, err == nil
}

// searchName keeps the part of the name before the first comma, so
// "Apple Inc., Class A" searches for "Apple Inc.".
func searchName(companyName string) string {
	name, _, _ := strings.Cut(companyName, ",")
	return strings.TrimSpace(name)
}

// Timespan renders lookback in GDELT's timespan syntax. Whole months are
// used where possible; GDELT caps article lists at three months.
func Timespan(lookback time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case lookback <= 0:
		return "3months"
	case lookback < day:
		return fmt.Sprintf("%dh", max(1, int(lookback/time.Hour)))
	case lookback%(30*day) == 0:
		return fmt.Sprintf("%dmonths", min(3, int(lookback/(30*day))))
	case lookback%(7*day) == 0:
		return fmt.Sprintf("%dweeks", int(lookback/(7*day)))
	default:
		days := int(lookback / day)
		if days > 90 {
			return "3months"
		}
		return fmt.Sprintf("%dd", days)
	}
}
