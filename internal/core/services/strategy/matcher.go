package strategy

import (
	"fmt"
	"regexp"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const evidencePad = 40

// DefaultSpecificity is the base confidence of a pattern without its own.
const DefaultSpecificity = 0.35

type patternGroup struct {
	theme       string
	category    domain.Category
	patterns    []*regexp.Regexp
	specificity []float64
}

// Matcher runs the catalogue's keyword patterns, grouped by theme.
// It is immutable and safe for concurrent use.
type Matcher struct {
	groups []patternGroup
}

// ThemeHits is the match summary of one theme group.
type ThemeHits struct {
	Theme       string
	Category    domain.Category
	Count       int
	Specificity float64
	Evidence    string
}

// NewMatcher compiles the patterns case-insensitively. Groups keep the
// order in which their theme first appears.
func NewMatcher(catalog *domain.Catalog) (*Matcher, error) {
	m := &Matcher{}
	index := make(map[string]int)
	tax := catalog.Taxonomy

	for _, p := range catalog.Patterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q for %q: %v", domain.ErrInvalidInput, p.Pattern, p.Theme, err)
		}
		name := tax.Canonical(p.Theme)
		i, ok := index[name]
		if !ok {
			i = len(m.groups)
			index[name] = i
			m.groups = append(m.groups, patternGroup{theme: name, category: tax.Category(name)})
		}
		spec := p.Specificity
		if spec <= 0 {
			spec = DefaultSpecificity
		}
		m.groups[i].patterns = append(m.groups[i].patterns, re)
		m.groups[i].specificity = append(m.groups[i].specificity, spec)
	}

	return m, nil
}

// Len returns the number of theme groups.
func (m *Matcher) Len() int {
	return len(m.groups)
}

// Scan counts non-overlapping matches per theme. Themes with no match are
// omitted. Evidence surrounds the first match of the first matching pattern.
func (m *Matcher) Scan(text string) []ThemeHits {
	if text == "" {
		return nil
	}
	var hits []ThemeHits
	for _, g := range m.groups {
		h := ThemeHits{Theme: g.theme, Category: g.category}
		for i, re := range g.patterns {
			locs := re.FindAllStringIndex(text, -1)
			if len(locs) == 0 {
				continue
			}
			h.Count += len(locs)
			h.Specificity = max(h.Specificity, g.specificity[i])
			if h.Evidence == "" {
				h.Evidence = snippet(text, locs[0][0], locs[0][1], evidencePad)
			}
		}
		if h.Count > 0 {
			hits = append(hits, h)
		}
	}
	return hits
}
