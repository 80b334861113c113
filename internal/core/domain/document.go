package domain

import "time"

// SourceDocument is a piece of disclosure or signal text for one company.
// It is never mutated after creation.
type SourceDocument struct {
	// Ticker is the company the document belongs to.
	Ticker string

	// Origin identifies the document kind.
	Origin OriginKind

	// Text is the extracted plain text.
	Text string

	// URL is where the document was retrieved from, if known.
	URL string

	// RetrievedAt is when the document was fetched.
	RetrievedAt time.Time
}

// Ref returns a stable reference string for chunks derived from this document.
func (d SourceDocument) Ref() string {
	return d.Ticker + "/" + string(d.Origin)
}

// TextChunk is a contiguous word span of a SourceDocument.
type TextChunk struct {
	// DocumentRef identifies the parent document.
	DocumentRef string

	// Ordinal is the zero-based chunk position.
	Ordinal int

	// Text is the chunk content.
	Text string

	// WordCount is the number of words in Text.
	WordCount int
}

// FilteredChunk is a TextChunk that passed the semantic filter.
type FilteredChunk struct {
	TextChunk

	// Theme is the best-matching taxonomy theme.
	Theme string

	// Category is the best-matching theme's category.
	Category Category

	// Score is the cosine similarity to the best-matching theme.
	Score float64
}
