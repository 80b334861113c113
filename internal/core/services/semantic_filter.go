package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// SemanticFilter keeps chunks whose best taxonomy similarity exceeds a
// threshold and labels them with that theme.
type SemanticFilter struct {
	embedder driven.EmbeddingService
}

// NewSemanticFilter creates a filter. embedder may be nil.
func NewSemanticFilter(embedder driven.EmbeddingService) *SemanticFilter {
	return &SemanticFilter{embedder: embedder}
}

// Filter embeds chunks in one batch and keeps those scoring strictly above
// threshold. Order is preserved; the first theme wins ties.
func (f *SemanticFilter) Filter(
	ctx context.Context, chunks []domain.TextChunk, tax *domain.Taxonomy, threshold float64,
) ([]domain.FilteredChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if f.embedder == nil || tax == nil || !tax.HasVectors() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := f.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	var out []domain.FilteredChunk
	for i, chunk := range chunks {
		best, score := -1, 0.0
		for j := 0; j < tax.Len(); j++ {
			sim := Cosine(vectors[i], tax.Theme(j).Vector)
			if best < 0 || sim > score {
				best, score = j, sim
			}
		}
		if best < 0 || score <= threshold {
			continue
		}
		theme := tax.Theme(best)
		out = append(out, domain.FilteredChunk{
			TextChunk: chunk,
			Theme:     theme.Name,
			Category:  theme.Category,
			Score:     score,
		})
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b accumulated in float64.
// Mismatched lengths or a zero norm give 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
