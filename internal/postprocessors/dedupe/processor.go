// Package dedupe drops chunks that repeat earlier chunk text.
// Filings repeat boilerplate such as forward-looking statement notices.
package dedupe

import (
	"context"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Name is the registry key of this stage.
const Name = "dedupe"

// Processor removes duplicate chunks. Comparison ignores case and
// whitespace. Surviving chunks keep their order and are renumbered.
type Processor struct{}

// New creates a dedupe processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process filters chunks produced by an earlier processor.
func (p *Processor) Process(_ context.Context, _ *domain.SourceDocument, chunks []domain.TextChunk) ([]domain.TextChunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	seen := make(map[string]struct{}, len(chunks))
	out := make([]domain.TextChunk, 0, len(chunks))
	for _, c := range chunks {
		key := strings.Join(strings.Fields(strings.ToLower(c.Text)), " ")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c.Ordinal = len(out)
		out = append(out, c)
	}

	return out, nil
}
