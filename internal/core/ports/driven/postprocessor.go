package driven

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// PostProcessor is one stage of document chunking. A producing stage such
// as the chunker ignores the incoming chunks; a filtering stage such as
// dedupe rewrites them.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.SourceDocument, chunks []domain.TextChunk) ([]domain.TextChunk, error)
}

// PostProcessorPipeline runs a configured stage list over one document.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.SourceDocument) ([]domain.TextChunk, error)
}
