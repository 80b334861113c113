package strategy

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

const (
	newsMaxConfidence = 0.8
	newsBase          = 0.25
	newsRelWeight     = 0.3
	newsMaxCoverage   = 0.15
)

// News maps GDELT theme codes from recent coverage onto the taxonomy.
type News struct {
	provider driven.NewsProvider
	lookback time.Duration
	tax      *domain.Taxonomy
	exact    map[string]string
	prefixes []string
}

// NewNews creates the news strategy. provider may be nil.
func NewNews(catalog *domain.Catalog, provider driven.NewsProvider, lookback time.Duration) *News {
	s := &News{
		provider: provider,
		lookback: lookback,
		tax:      catalog.Taxonomy,
		exact:    make(map[string]string, len(catalog.NewsThemes)),
	}
	for code, theme := range catalog.NewsThemes {
		key := strings.ToUpper(strings.TrimSpace(code))
		s.exact[key] = theme
		s.prefixes = append(s.prefixes, key)
	}
	sort.Slice(s.prefixes, func(i, j int) bool {
		if len(s.prefixes[i]) != len(s.prefixes[j]) {
			return len(s.prefixes[i]) > len(s.prefixes[j])
		}
		return s.prefixes[i] < s.prefixes[j]
	})
	return s
}

// Source returns domain.SourceNews.
func (s *News) Source() domain.Source {
	return domain.SourceNews
}

// Extract scores themes by relative frequency and article coverage,
// dampened when average tone is negative.
func (s *News) Extract(ctx context.Context, in Inputs) []domain.ThemeCandidate {
	if s.provider == nil {
		in.Note(domain.Unavailable{Provider: "news", Reason: domain.ReasonNoCredential})
		return nil
	}
	if !in.HasCompanyName() {
		return nil
	}

	out := s.provider.FetchNews(ctx, in.CompanyName(), s.lookback)
	signal, ok := out.Get()
	if !ok {
		in.Note(out.Unavailable())
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, code := range signal.Themes {
		theme := s.lookup(code)
		if theme == "" {
			continue
		}
		if counts[theme] == 0 {
			order = append(order, theme)
		}
		counts[theme]++
	}
	if len(order) == 0 {
		return nil
	}

	maxCount := 0
	for _, n := range counts {
		maxCount = max(maxCount, n)
	}
	articles := max(1, len(signal.Titles))
	weight := toneWeight(signal)

	c := newCollector()
	for _, theme := range order {
		n := counts[theme]
		rel := float64(n) / float64(maxCount)
		coverage := min(newsMaxCoverage, float64(n)/float64(articles))
		conf := min(newsMaxConfidence, newsBase+rel*newsRelWeight+coverage) * weight
		c.add(domain.ThemeCandidate{
			Theme:      theme,
			Category:   s.tax.Category(theme),
			Confidence: round3(conf),
			Source:     domain.SourceNews,
			Evidence:   fmt.Sprintf("%d news mentions", n),
		})
	}
	return c.candidates()
}

// lookup maps a theme code exactly, then by longest matching prefix.
func (s *News) lookup(code string) string {
	key := strings.ToUpper(strings.TrimSpace(code))
	if key == "" {
		return ""
	}
	if theme, ok := s.exact[key]; ok {
		return s.tax.Canonical(theme)
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(key, p) {
			return s.tax.Canonical(s.exact[p])
		}
	}
	return ""
}

func toneWeight(sig domain.NewsSignal) float64 {
	if !sig.HasTone || sig.Tone >= 0 {
		return 1
	}
	return max(0.5, 1+sig.Tone/10)
}
