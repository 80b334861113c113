// Package chunker provides a fixed-size word chunking processor.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const (
	// Name is the registry key of this stage.
	Name = domain.ChunkerStage

	// DefaultMaxWords is the default number of words per chunk.
	DefaultMaxWords = 200
)

// Processor splits document text into word-count chunks.
// It implements the PostProcessor interface.
type Processor struct {
	maxWords int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxWords sets the chunk size in words.
func WithMaxWords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWords = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxWords: DefaultMaxWords,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// MaxWords returns the configured chunk size.
func (p *Processor) MaxWords() int {
	return p.maxWords
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from document text.
func (p *Processor) Process(_ context.Context, doc *domain.SourceDocument, _ []domain.TextChunk) ([]domain.TextChunk, error) {
	chunks := Chunk(doc.Text, p.maxWords)
	ref := doc.Ref()
	for i := range chunks {
		chunks[i].DocumentRef = ref
	}
	return chunks, nil
}

// Chunk greedily splits text on whitespace into spans of at most maxWords
// words. The last chunk may be shorter. maxWords <= 0 uses DefaultMaxWords.
// Empty or whitespace-only text produces no chunks.
func Chunk(text string, maxWords int) []domain.TextChunk {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]domain.TextChunk, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, domain.TextChunk{
			Ordinal:   len(chunks),
			Text:      strings.Join(words[start:end], " "),
			WordCount: end - start,
		})
	}

	return chunks
}
