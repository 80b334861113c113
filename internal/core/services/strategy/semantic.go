package strategy

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Semantic turns filter hits into candidates scored by similarity.
type Semantic struct{}

// NewSemantic creates the semantic-match strategy.
func NewSemantic() *Semantic {
	return &Semantic{}
}

// Source returns domain.SourceSemantic.
func (s *Semantic) Source() domain.Source {
	return domain.SourceSemantic
}

// Extract emits one candidate per matched theme, keeping the best chunk.
func (s *Semantic) Extract(_ context.Context, in Inputs) []domain.ThemeCandidate {
	c := newCollector()
	for _, ch := range in.Chunks {
		if ch.Theme == "" {
			continue
		}
		c.add(domain.ThemeCandidate{
			Theme:      ch.Theme,
			Category:   ch.Category,
			Confidence: domain.Clamp01(ch.Score),
			Source:     domain.SourceSemantic,
			Evidence:   snippet(ch.Text, 0, 0, 2*evidencePad),
		})
	}
	return c.candidates()
}
