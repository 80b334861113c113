package strategy

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

const (
	socialMinHits       = 2
	socialMaxConfidence = 0.75
	socialBase          = 0.25
	socialDensityWeight = 0.07
)

// Social runs the keyword patterns over recent non-bearish messages.
type Social struct {
	provider driven.SocialProvider
	matcher  *Matcher
	lookback time.Duration
}

// NewSocial creates the social strategy. provider may be nil.
func NewSocial(matcher *Matcher, provider driven.SocialProvider, lookback time.Duration) *Social {
	return &Social{provider: provider, matcher: matcher, lookback: lookback}
}

// Source returns domain.SourceSocial.
func (s *Social) Source() domain.Source {
	return domain.SourceSocial
}

// Extract requires at least two hits per theme.
func (s *Social) Extract(ctx context.Context, in Inputs) []domain.ThemeCandidate {
	if s.provider == nil {
		in.Note(domain.Unavailable{Provider: "social", Reason: domain.ReasonNoCredential})
		return nil
	}

	out := s.provider.FetchSocial(ctx, in.Ticker, s.lookback)
	signal, ok := out.Get()
	if !ok {
		in.Note(out.Unavailable())
		return nil
	}

	text := signal.Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	length := utf8.RuneCountInString(text)

	c := newCollector()
	for _, h := range s.matcher.Scan(text) {
		if h.Count < socialMinHits {
			continue
		}
		conf := min(socialMaxConfidence, socialBase+density(h.Count, length)*socialDensityWeight)
		c.add(domain.ThemeCandidate{
			Theme:      h.Theme,
			Category:   h.Category,
			Confidence: round3(conf),
			Source:     domain.SourceSocial,
			Evidence:   h.Evidence,
		})
	}
	return c.candidates()
}
