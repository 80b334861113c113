package domain

import "strings"

// CodeMapping maps a classification code to a theme with a fixed confidence.
// A zero Confidence means "use the table's default".
type CodeMapping struct {
	Theme      string  `yaml:"theme"`
	Confidence float64 `yaml:"confidence,omitempty"`
}

// CodeTable maps normalised codes or labels to themes.
type CodeTable map[string][]CodeMapping

// Lookup returns the mappings for key. Keys are compared case-insensitively.
func (t CodeTable) Lookup(key string) []CodeMapping {
	if t == nil {
		return nil
	}
	return t[NormalizeCode(key)]
}

// NormalizeCode trims and lower-cases a code or label.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// KeywordPattern is one regular expression that signals a theme.
type KeywordPattern struct {
	// Theme is the canonical theme the pattern signals.
	Theme string

	// Pattern is an RE2 expression, matched case-insensitively.
	Pattern string

	// Specificity is the base confidence for a match; narrower phrases
	// carry more weight than short acronyms.
	Specificity float64
}

// Catalog is the static reference data loaded at startup.
type Catalog struct {
	// Taxonomy holds canonical themes, aliases and the blocklist.
	Taxonomy *Taxonomy

	// SICCodes maps 4-digit SIC codes, and "NN00" two-digit prefixes, to themes.
	SICCodes CodeTable

	// Sectors and Industries map profile labels to themes.
	Sectors    CodeTable
	Industries CodeTable

	// CPCCodes maps patent classification prefixes to themes.
	CPCCodes map[string][]string

	// NewsThemes maps news theme-code prefixes to a theme.
	NewsThemes map[string]string

	// Patterns are keyword patterns in evaluation order.
	Patterns []KeywordPattern
}
