package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

const filingProviderName = "filing"

// FallbackResolver picks the most recent usable disclosure for a ticker.
type FallbackResolver struct {
	filings driven.FilingProvider
	order   []domain.OriginKind
}

// NewFallbackResolver creates a resolver that tries quarterly, annual and
// registration filings in that order. filings may be nil.
func NewFallbackResolver(filings driven.FilingProvider) *FallbackResolver {
	return &FallbackResolver{filings: filings, order: domain.FilingFallbackOrder()}
}

// Resolve returns the first available filing with non-blank text.
// Texts are never combined across kinds.
func (r *FallbackResolver) Resolve(ctx context.Context, ticker string) domain.Outcome[domain.SourceDocument] {
	if r.filings == nil {
		return domain.Missing[domain.SourceDocument](filingProviderName, domain.ReasonNoCredential, domain.ErrMissingService)
	}

	last := domain.Unavailable{Provider: filingProviderName, Reason: domain.ReasonNotFound}
	for _, kind := range r.order {
		if err := ctx.Err(); err != nil {
			return domain.Missing[domain.SourceDocument](filingProviderName, domain.ReasonTimeout, err)
		}

		out := r.filings.FetchFiling(ctx, ticker, kind)
		doc, ok := out.Get()
		switch {
		case ok && strings.TrimSpace(doc.Text) != "":
			logger.Debug("Resolved %s filing for %s (%d chars)", kind, ticker, len(doc.Text))
			if doc.Origin == "" {
				doc.Origin = kind
			}
			return domain.Available(doc)
		case ok:
			last = domain.Unavailable{Provider: filingProviderName, Reason: domain.ReasonEmpty}
		default:
			last = out.Unavailable()
		}
		logger.Debug("No %s filing for %s: %s", kind, ticker, last.Reason)
	}

	if err := ctx.Err(); err != nil {
		return domain.Missing[domain.SourceDocument](filingProviderName, domain.ReasonTimeout, err)
	}
	return domain.MissingFrom[domain.SourceDocument](last)
}
