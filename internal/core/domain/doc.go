// Package domain holds the stockthemes value types and imports nothing
// outside the standard library.
//
// Data moves through it in this order: a SourceDocument is cut into
// TextChunks, the relevant ones survive as FilteredChunks, each strategy
// proposes ThemeCandidates against the Taxonomy, and the ensemble folds
// them into a ThemeResult. Collaborators that may have nothing to say
// return an Outcome, whose Unavailable side records the reason.
package domain
