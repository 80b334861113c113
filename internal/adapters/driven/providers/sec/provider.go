// Package sec fetches company filings and registration data from SEC EDGAR.
package sec

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.FilingProvider  = (*Provider)(nil)
	_ driven.ProfileProvider = (*Provider)(nil)
)

// ProviderName identifies SEC EDGAR in Unavailable descriptions.
const ProviderName = "sec"

// EDGAR endpoints.
const (
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	DefaultDataURL    = "https://data.sec.gov"
	DefaultArchiveURL = "https://www.sec.gov/Archives/edgar/data"
)

// MaxTextLength is the maximum number of characters kept from a filing.
const MaxTextLength = 15000

// Config holds endpoint overrides and cache lifetimes.
type Config struct {
	TickersURL string
	DataURL    string
	ArchiveURL string

	// QuarterlyTTL applies to 10-Q documents.
	QuarterlyTTL time.Duration

	// AnnualTTL applies to 10-K and S-1 documents.
	AnnualTTL time.Duration

	// IndexTTL applies to the ticker index and submissions.
	IndexTTL time.Duration
}

// DefaultConfig returns the public EDGAR endpoints.
func DefaultConfig() Config {
	return Config{
		TickersURL:   DefaultTickersURL,
		DataURL:      DefaultDataURL,
		ArchiveURL:   DefaultArchiveURL,
		QuarterlyTTL: 24 * time.Hour,
		AnnualTTL:    168 * time.Hour,
		IndexTTL:     24 * time.Hour,
	}
}

// UserAgent builds the identifying User-Agent EDGAR requires.
func UserAgent(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		email = "stockthemes@example.com"
	}
	return "stockthemes " + email
}

// Provider is the SEC EDGAR filing and profile provider.
type Provider struct {
	client *httpclient.Client
	cfg    Config
	now    func() time.Time

	mu   sync.Mutex
	ciks map[string]companyRef
}

// New creates the provider. The client should carry UserAgent(email).
func New(client *httpclient.Client, cfg Config) *Provider {
	def := DefaultConfig()
	if cfg.TickersURL == "" {
		cfg.TickersURL = def.TickersURL
	}
	if cfg.DataURL == "" {
		cfg.DataURL = def.DataURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = def.ArchiveURL
	}
	return &Provider{client: client, cfg: cfg, now: time.Now}
}

type companyRef struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

type submissions struct {
	CIK            string   `json:"cik"`
	Name           string   `json:"name"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
	Tickers        []string `json:"tickers"`
	Exchanges      []string `json:"exchanges"`
	Filings        struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

// recentFilings is EDGAR's column-oriented filing list, newest first.
type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

type filing struct {
	Accession string
	Date      string
	Form      string
	Document  string
}

// latest returns the newest filing of the given form.
func (r recentFilings) latest(form string) (filing, bool) {
	n := min(len(r.Form), len(r.AccessionNumber), len(r.PrimaryDocument))
	for i := range n {
		if !strings.EqualFold(r.Form[i], form) || r.PrimaryDocument[i] == "" {
			continue
		}
		f := filing{Accession: r.AccessionNumber[i], Form: r.Form[i], Document: r.PrimaryDocument[i]}
		if i < len(r.FilingDate) {
			f.Date = r.FilingDate[i]
		}
		return f, true
	}
	return filing{}, false
}

// FetchFiling returns the business section of the latest filing of kind.
func (p *Provider) FetchFiling(ctx context.Context, ticker string, kind domain.OriginKind) domain.Outcome[domain.SourceDocument] {
	form := kind.FormType()
	if form == "" {
		return domain.Missing[domain.SourceDocument](ProviderName, domain.ReasonNotFound,
			fmt.Errorf("%w: origin %s is not a filing", domain.ErrInvalidInput, kind))
	}

	ref, subs, err := p.company(ctx, ticker)
	if err != nil {
		return domain.MissingFrom[domain.SourceDocument](httpclient.Classify(ProviderName, err))
	}

	f, ok := subs.Filings.Recent.latest(form)
	if !ok {
		return domain.Missing[domain.SourceDocument](ProviderName, domain.ReasonNotFound,
			fmt.Errorf("%w: no %s filing for %s", domain.ErrNotFound, form, ticker))
	}

	url := p.documentURL(ref.CIK, f)
	raw, err := p.client.Get(ctx, httpclient.Request{
		URL:      url,
		CacheKey: "sec:doc:" + f.Accession + ":" + f.Document,
		TTL:      p.ttl(kind),
	})
	if err != nil {
		return domain.MissingFrom[domain.SourceDocument](httpclient.Classify(ProviderName, err))
	}

	text, err := htmlToText(raw)
	if err != nil {
		return domain.Missing[domain.SourceDocument](ProviderName, domain.ReasonFailed, err)
	}
	section := extractSection(text, form)
	if section == "" {
		logger.Debug("%s: no business section in %s %s, using whole document", ticker, form, f.Accession)
		section = text
	}
	section = truncate(strings.TrimSpace(section), MaxTextLength)
	if section == "" {
		return domain.Missing[domain.SourceDocument](ProviderName, domain.ReasonEmpty, nil)
	}

	logger.Debug("%s: %s %s filed %s, %d chars", ticker, form, f.Accession, f.Date, len(section))
	return domain.Available(domain.SourceDocument{
		Ticker:      ticker,
		Origin:      kind,
		Text:        section,
		URL:         url,
		RetrievedAt: p.now(),
	})
}

// FetchProfile returns the registrant name, SIC code and exchange.
func (p *Provider) FetchProfile(ctx context.Context, ticker string) domain.Outcome[domain.CompanyProfile] {
	ref, subs, err := p.company(ctx, ticker)
	if err != nil {
		return domain.MissingFrom[domain.CompanyProfile](httpclient.Classify(ProviderName, err))
	}

	profile := domain.CompanyProfile{
		Ticker:  ticker,
		Name:    firstNonEmpty(subs.Name, ref.Title),
		SICCode: strings.TrimSpace(subs.SIC),
	}
	if len(subs.Exchanges) > 0 {
		profile.Exchange = subs.Exchanges[0]
	}
	return domain.Available(profile)
}

// company resolves the ticker and loads its submissions.
func (p *Provider) company(ctx context.Context, ticker string) (companyRef, submissions, error) {
	ref, err := p.lookup(ctx, ticker)
	if err != nil {
		return companyRef{}, submissions{}, err
	}

	var subs submissions
	err = p.client.GetJSON(ctx, httpclient.Request{
		URL:      fmt.Sprintf("%s/submissions/CIK%010d.json", strings.TrimRight(p.cfg.DataURL, "/"), ref.CIK),
		CacheKey: fmt.Sprintf("sec:submissions:%010d", ref.CIK),
		TTL:      p.cfg.IndexTTL,
	}, &subs)
	if err != nil {
		return companyRef{}, submissions{}, err
	}
	return ref, subs, nil
}

// lookup maps a ticker to its CIK. The index is loaded once per provider.
func (p *Provider) lookup(ctx context.Context, ticker string) (companyRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ciks == nil {
		var index map[string]companyRef
		err := p.client.GetJSON(ctx, httpclient.Request{
			URL:      p.cfg.TickersURL,
			CacheKey: "sec:tickers",
			TTL:      p.cfg.IndexTTL,
		}, &index)
		if err != nil {
			return companyRef{}, fmt.Errorf("load ticker index: %w", err)
		}
		p.ciks = make(map[string]companyRef, len(index))
		for _, ref := range index {
			p.ciks[strings.ToUpper(ref.Ticker)] = ref
		}
	}

	key := strings.ToUpper(strings.TrimSpace(ticker))
	for _, candidate := range []string{key, strings.ReplaceAll(key, ".", "-")} {
		if ref, ok := p.ciks[candidate]; ok {
			return ref, nil
		}
	}
	return companyRef{}, fmt.Errorf("%w: ticker %s has no CIK", domain.ErrNotFound, ticker)
}

func (p *Provider) documentURL(cik int, f filing) string {
	accession := strings.ReplaceAll(f.Accession, "-", "")
	return strings.TrimRight(p.cfg.ArchiveURL, "/") + "/" + strconv.Itoa(cik) + "/" + accession + "/" + f.Document
}

func (p *Provider) ttl(kind domain.OriginKind) time.Duration {
	if kind == domain.OriginQuarterly {
		return p.cfg.QuarterlyTTL
	}
	return p.cfg.AnnualTTL
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
