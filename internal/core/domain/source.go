package domain

import "strings"

// Source identifies the extraction strategy that produced a candidate.
type Source string

// Extraction strategies.
const (
	// SourceCodeMapping maps industry/sector classification codes via static tables.
	SourceCodeMapping Source = "code_mapping"

	// SourcePattern matches keyword patterns against business text.
	SourcePattern Source = "pattern"

	// SourceSemantic reuses semantic filter scores as confidences.
	SourceSemantic Source = "semantic"

	// SourceNews maps news-article theme codes.
	SourceNews Source = "news"

	// SourcePatent maps patent classification codes.
	SourcePatent Source = "patent"

	// SourceSocial matches keyword patterns against social messages.
	SourceSocial Source = "social"

	// SourceGenerative asks a language model for themes.
	SourceGenerative Source = "generative"
)

// AllSources returns every strategy in descending priority order.
func AllSources() []Source {
	return []Source{
		SourceGenerative,
		SourceSemantic,
		SourceNews,
		SourcePatent,
		SourceSocial,
		SourcePattern,
		SourceCodeMapping,
	}
}

// IsValid returns true if the source is recognised.
func (s Source) IsValid() bool {
	return s.Priority() > 0
}

// IsExternalSignal returns true for strategies fed by third-party signal providers.
func (s Source) IsExternalSignal() bool {
	return s == SourceNews || s == SourcePatent || s == SourceSocial
}

// Priority orders sources for tie-breaking. Higher wins.
// generative > semantic > external signals > pattern > code mapping.
// External signals are ordered news > patent > social so the order is total.
func (s Source) Priority() int {
	switch s {
	case SourceGenerative:
		return 70
	case SourceSemantic:
		return 60
	case SourceNews:
		return 52
	case SourcePatent:
		return 51
	case SourceSocial:
		return 50
	case SourcePattern:
		return 20
	case SourceCodeMapping:
		return 10
	default:
		return 0
	}
}

// String returns the string representation.
func (s Source) String() string {
	return string(s)
}

// ParseSource converts a string to a Source.
func ParseSource(s string) (Source, bool) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	return src, src.IsValid()
}

// OriginKind identifies where a SourceDocument came from.
type OriginKind string

// Document origins.
const (
	OriginQuarterly    OriginKind = "quarterly"
	OriginAnnual       OriginKind = "annual"
	OriginRegistration OriginKind = "registration"
	OriginNews         OriginKind = "news"
	OriginPatent       OriginKind = "patent"
	OriginSocial       OriginKind = "social"
)

// FilingFallbackOrder is the order in which filing kinds are tried.
func FilingFallbackOrder() []OriginKind {
	return []OriginKind{OriginQuarterly, OriginAnnual, OriginRegistration}
}

// IsFiling returns true for regulatory filing origins.
func (k OriginKind) IsFiling() bool {
	return k.FormType() != ""
}

// FormType returns the SEC form for filing origins, or "" otherwise.
func (k OriginKind) FormType() string {
	switch k {
	case OriginQuarterly:
		return "10-Q"
	case OriginAnnual:
		return "10-K"
	case OriginRegistration:
		return "S-1"
	default:
		return ""
	}
}

// String returns the string representation.
func (k OriginKind) String() string {
	return string(k)
}
