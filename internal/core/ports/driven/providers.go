package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// FilingProvider fetches the business text of a regulatory filing.
// Implementations extract the relevant section and return plain text.
type FilingProvider interface {
	// FetchFiling returns the most recent filing of the given kind.
	// kind is one of the filing origins (quarterly, annual, registration).
	FetchFiling(ctx context.Context, ticker string, kind domain.OriginKind) domain.Outcome[domain.SourceDocument]
}

// ProfileProvider fetches structured company data.
type ProfileProvider interface {
	// FetchProfile returns what the provider knows about the ticker.
	// Partial profiles are available; a provider that knows nothing returns not_found.
	FetchProfile(ctx context.Context, ticker string) domain.Outcome[domain.CompanyProfile]
}

// PatentProvider fetches a company's patent portfolio summary.
type PatentProvider interface {
	// FetchPatents searches patents assigned to the named company.
	// Returns no_credential when the provider needs a key that is not configured.
	FetchPatents(ctx context.Context, companyName string) domain.Outcome[domain.PatentSignal]
}

// NewsProvider fetches recent news coverage for a company.
type NewsProvider interface {
	// FetchNews returns articles mentioning the company within lookback.
	FetchNews(ctx context.Context, companyName string, lookback time.Duration) domain.Outcome[domain.NewsSignal]
}

// SocialProvider supplies recent non-bearish social messages for a ticker.
type SocialProvider interface {
	// FetchSocial returns bullish and neutral messages created within lookback.
	FetchSocial(ctx context.Context, ticker string, lookback time.Duration) domain.Outcome[domain.SocialSignal]
}

// SocialStreamer fetches live messages from a social platform.
// Used by the collector; extraction reads from the SocialStore instead.
type SocialStreamer interface {
	// Name identifies the platform, stored as SocialMessage.Source.
	Name() string

	// Stream returns the latest messages for the ticker.
	Stream(ctx context.Context, ticker string) ([]domain.SocialMessage, error)
}

// CatalogLoader loads the static reference data.
type CatalogLoader interface {
	// Load parses and validates the catalogue.
	Load() (*domain.Catalog, error)
}
