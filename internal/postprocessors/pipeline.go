// Package postprocessors turns a source document into the text chunks the
// extraction strategies read.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs its stages in order, feeding each the previous stage's
// chunks. The first stage receives nil and is expected to create chunks.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline creates a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process runs every stage over doc and returns the last stage's chunks.
// It stops at the first stage error or when ctx is done.
func (p *Pipeline) Process(ctx context.Context, doc *domain.SourceDocument) ([]domain.TextChunk, error) {
	if doc == nil {
		return nil, errors.New("postprocessors: nil document")
	}

	var chunks []domain.TextChunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("%s stage on %s/%s: %w", stage.Name(), doc.Ticker, doc.Origin, err)
		}
		logger.Debug("%s/%s: %s -> %d chunks", doc.Ticker, doc.Origin, stage.Name(), len(out))
		chunks = out
	}
	return chunks, nil
}

// Add appends stage to the end of the pipeline.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Names lists the stage names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
