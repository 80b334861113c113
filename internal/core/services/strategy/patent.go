package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

const (
	patentMaxConfidence = 0.85
	patentBase          = 0.3
	patentRelWeight     = 0.35
	patentMaxVolume     = 0.2
	patentVolumeScale   = 500
)

// Patent maps CPC classifications of recent grants onto the taxonomy.
type Patent struct {
	provider driven.PatentProvider
	tax      *domain.Taxonomy
	cpc      map[string][]string
}

// NewPatent creates the patent strategy. provider may be nil.
func NewPatent(catalog *domain.Catalog, provider driven.PatentProvider) *Patent {
	cpc := make(map[string][]string, len(catalog.CPCCodes))
	for code, themes := range catalog.CPCCodes {
		cpc[strings.ToUpper(strings.TrimSpace(code))] = themes
	}
	return &Patent{provider: provider, tax: catalog.Taxonomy, cpc: cpc}
}

// Source returns domain.SourcePatent.
func (s *Patent) Source() domain.Source {
	return domain.SourcePatent
}

// Extract scores themes by relative CPC frequency plus portfolio volume.
func (s *Patent) Extract(ctx context.Context, in Inputs) []domain.ThemeCandidate {
	if s.provider == nil {
		in.Note(domain.Unavailable{Provider: "patents", Reason: domain.ReasonNoCredential})
		return nil
	}
	if !in.HasCompanyName() {
		return nil
	}

	out := s.provider.FetchPatents(ctx, in.CompanyName())
	signal, ok := out.Get()
	if !ok {
		in.Note(out.Unavailable())
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, code := range signal.CPCCodes {
		for _, theme := range s.lookup(code) {
			if counts[theme] == 0 {
				order = append(order, theme)
			}
			counts[theme]++
		}
	}
	if len(order) == 0 {
		return nil
	}

	maxCount := 0
	for _, n := range counts {
		maxCount = max(maxCount, n)
	}
	total := signal.Count
	if total <= 0 {
		total = len(signal.CPCCodes)
	}
	volume := min(patentMaxVolume, float64(total)/patentVolumeScale)

	c := newCollector()
	for _, theme := range order {
		n := counts[theme]
		rel := float64(n) / float64(maxCount)
		conf := min(patentMaxConfidence, patentBase+rel*patentRelWeight+volume)
		c.add(domain.ThemeCandidate{
			Theme:      theme,
			Category:   s.tax.Category(theme),
			Confidence: round3(conf),
			Source:     domain.SourcePatent,
			Evidence:   fmt.Sprintf("%d of %d patents", n, total),
		})
	}
	return c.candidates()
}

// lookup tries the full code, then its 4- and 3-character prefixes.
func (s *Patent) lookup(code string) []string {
	key := strings.ToUpper(strings.TrimSpace(code))
	for _, n := range []int{len(key), 4, 3} {
		if n > len(key) || n == 0 {
			continue
		}
		if themes, ok := s.cpc[key[:n]]; ok {
			out := make([]string, 0, len(themes))
			for _, t := range themes {
				out = append(out, s.tax.Canonical(t))
			}
			return out
		}
	}
	return nil
}
