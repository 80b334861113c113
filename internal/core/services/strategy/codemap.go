package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Default confidences for code-mapping table entries without their own.
const (
	sicExactConfidence  = 0.65
	sicPrefixConfidence = 0.4
	sectorConfidence    = 0.5
	industryConfidence  = 0.55
)

// CodeMapping maps classification codes and profile labels to themes
// through static tables. Confidences are fixed per table entry.
type CodeMapping struct {
	catalog *domain.Catalog
}

// NewCodeMapping creates the code-mapping strategy.
func NewCodeMapping(catalog *domain.Catalog) *CodeMapping {
	return &CodeMapping{catalog: catalog}
}

// Source returns domain.SourceCodeMapping.
func (s *CodeMapping) Source() domain.Source {
	return domain.SourceCodeMapping
}

// Extract looks up the SIC code, its two-digit prefix, the sector and the
// industry, in that order. The first occurrence of a theme wins.
func (s *CodeMapping) Extract(_ context.Context, in Inputs) []domain.ThemeCandidate {
	c := newCollector()
	tax := s.catalog.Taxonomy

	add := func(mappings []domain.CodeMapping, fallback float64, evidence string) {
		for _, m := range mappings {
			name := tax.Canonical(m.Theme)
			if name == "" {
				continue
			}
			conf := m.Confidence
			if conf <= 0 {
				conf = fallback
			}
			c.addFirst(domain.ThemeCandidate{
				Theme:      name,
				Category:   tax.Category(name),
				Confidence: domain.Clamp01(conf),
				Source:     domain.SourceCodeMapping,
				Evidence:   evidence,
			})
		}
	}

	if sic := strings.TrimSpace(in.Profile.SICCode); sic != "" {
		add(s.catalog.SICCodes.Lookup(sic), sicExactConfidence, "SIC code "+sic)
		if len(sic) >= 2 {
			prefix := sic[:2] + "00"
			if prefix != sic {
				add(s.catalog.SICCodes.Lookup(prefix), sicPrefixConfidence, fmt.Sprintf("SIC prefix %sxx", sic[:2]))
			}
		}
	}
	if sector := strings.TrimSpace(in.Profile.Sector); sector != "" {
		add(s.catalog.Sectors.Lookup(sector), sectorConfidence, "sector: "+sector)
	}
	if industry := strings.TrimSpace(in.Profile.Industry); industry != "" {
		add(s.catalog.Industries.Lookup(industry), industryConfidence, "industry: "+industry)
	}

	return c.candidates()
}
