package strategy

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const (
	patternMaxConfidence = 0.9
	patternDensityWeight = 0.08
)

// Pattern matches keyword patterns against the raw business text.
type Pattern struct {
	matcher *Matcher
}

// NewPattern creates the pattern strategy.
func NewPattern(matcher *Matcher) *Pattern {
	return &Pattern{matcher: matcher}
}

// Source returns domain.SourcePattern.
func (s *Pattern) Source() domain.Source {
	return domain.SourcePattern
}

// Extract scores each matched theme by specificity plus match density,
// where density is matches per thousand characters.
func (s *Pattern) Extract(_ context.Context, in Inputs) []domain.ThemeCandidate {
	text := in.BusinessText()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	length := utf8.RuneCountInString(text)

	c := newCollector()
	for _, h := range s.matcher.Scan(text) {
		conf := min(patternMaxConfidence, h.Specificity+density(h.Count, length)*patternDensityWeight)
		c.add(domain.ThemeCandidate{
			Theme:      h.Theme,
			Category:   h.Category,
			Confidence: round3(conf),
			Source:     domain.SourcePattern,
			Evidence:   h.Evidence,
		})
	}
	return c.candidates()
}

// density returns matches per 1000 characters.
func density(count, length int) float64 {
	if length == 0 {
		return 0
	}
	return float64(count) / (float64(length) / 1000)
}
