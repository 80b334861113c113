package services

import (
	"sort"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Merger combines candidates from all strategies into a ranked result.
type Merger struct {
	taxonomy  *domain.Taxonomy
	maxThemes int
}

// NewMerger creates a merger that keeps at most maxThemes themes.
func NewMerger(taxonomy *domain.Taxonomy, maxThemes int) *Merger {
	return &Merger{taxonomy: taxonomy, maxThemes: maxThemes}
}

// Merge groups candidates by canonical name and keeps the most confident
// one per theme. Equal confidences prefer the higher-priority source.
// Blocklisted names are dropped before grouping.
func (m *Merger) Merge(ticker, companyName string, candidates []domain.ThemeCandidate) domain.ThemeResult {
	best := make(map[string]domain.RankedTheme)
	used := make(map[domain.Source]struct{})

	for _, c := range candidates {
		name := m.taxonomy.Canonical(c.Theme)
		if name == "" || m.taxonomy.IsBlocked(name) {
			continue
		}
		used[c.Source] = struct{}{}

		category := m.taxonomy.Category(name)
		if category == "" {
			category = c.Category
		}
		ranked := domain.RankedTheme{
			Theme:      name,
			Category:   category,
			Confidence: domain.Clamp01(c.Confidence),
			Source:     c.Source,
			Evidence:   c.Evidence,
		}

		cur, ok := best[name]
		if !ok || outranks(ranked, cur) {
			best[name] = ranked
		}
	}

	themes := make([]domain.RankedTheme, 0, len(best))
	for _, t := range best {
		themes = append(themes, t)
	}
	sort.Slice(themes, func(i, j int) bool {
		a, b := themes[i], themes[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if pa, pb := a.Source.Priority(), b.Source.Priority(); pa != pb {
			return pa > pb
		}
		return a.Theme < b.Theme
	})
	if m.maxThemes > 0 && len(themes) > m.maxThemes {
		themes = themes[:m.maxThemes]
	}

	sources := make([]domain.Source, 0, len(used))
	for src := range used {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool {
		if pi, pj := sources[i].Priority(), sources[j].Priority(); pi != pj {
			return pi > pj
		}
		return sources[i] < sources[j]
	})

	return domain.ThemeResult{
		Ticker:      ticker,
		CompanyName: companyName,
		Themes:      themes,
		Metadata: domain.ResultMetadata{
			SourcesUsed:     sources,
			TotalCandidates: len(candidates),
		},
	}
}

func outranks(a, b domain.RankedTheme) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.Source.Priority() > b.Source.Priority()
}
