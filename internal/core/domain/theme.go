package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Category is a coarse bucket for grouping themes.
type Category string

// Theme categories.
const (
	CategoryTechnology    Category = "technology"
	CategoryHealthcare    Category = "healthcare"
	CategoryEnergy        Category = "energy"
	CategoryConsumer      Category = "consumer"
	CategoryFinancial     Category = "financial"
	CategoryIndustrial    Category = "industrial"
	CategoryCommunication Category = "communication"
	CategoryRealEstate    Category = "real_estate"
	CategoryMaterials     Category = "materials"
	CategoryMacro         Category = "macro"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTechnology, CategoryHealthcare, CategoryEnergy, CategoryConsumer,
		CategoryFinancial, CategoryIndustrial, CategoryCommunication,
		CategoryRealEstate, CategoryMaterials, CategoryMacro:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// TaxonomyTheme is a canonical investment theme.
type TaxonomyTheme struct {
	// Name is the unique canonical key, lower-case.
	Name string

	// Category is the coarse bucket.
	Category Category

	// Description is the text embedded to build the reference vector.
	Description string

	// Synonyms resolve to this theme during normalisation.
	Synonyms []string

	// Vector is the precomputed reference embedding. Empty until embedded.
	Vector []float32
}

// EmbeddingText returns the text used to compute the reference vector.
func (t TaxonomyTheme) EmbeddingText() string {
	if t.Description != "" {
		return t.Name + ": " + t.Description
	}
	if len(t.Synonyms) == 0 {
		return t.Name
	}
	return t.Name + ": " + strings.Join(t.Synonyms, ", ")
}

// Fuzzy matching thresholds used by Resolve.
const (
	fuzzySimilarityThreshold = 0.85
	minContainmentLength     = 4
)

// Taxonomy is the immutable catalogue of canonical themes with alias
// and blocklist indexes. It is safe for concurrent read-only use.
type Taxonomy struct {
	themes  []TaxonomyTheme
	index   map[string]int
	aliases map[string]string
	blocked map[string]struct{}
}

// NewTaxonomy builds a taxonomy. Theme names must be unique after
// normalisation, every category must be valid and every alias must point at
// a known theme.
func NewTaxonomy(themes []TaxonomyTheme, aliases map[string]string, blocklist []string) (*Taxonomy, error) {
	t := &Taxonomy{
		themes:  make([]TaxonomyTheme, 0, len(themes)),
		index:   make(map[string]int, len(themes)),
		aliases: make(map[string]string, len(aliases)),
		blocked: make(map[string]struct{}, len(blocklist)),
	}

	for _, theme := range themes {
		name := NormalizeName(theme.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: theme with empty name", ErrInvalidInput)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate theme %q", ErrInvalidInput, name)
		}
		if !theme.Category.IsValid() {
			return nil, fmt.Errorf("%w: theme %q has unknown category %q", ErrInvalidInput, name, theme.Category)
		}
		theme.Name = name
		theme.Synonyms = append([]string(nil), theme.Synonyms...)
		t.index[name] = len(t.themes)
		t.themes = append(t.themes, theme)
	}

	for _, theme := range t.themes {
		for _, syn := range theme.Synonyms {
			key := NormalizeName(syn)
			if key == "" || key == theme.Name {
				continue
			}
			if _, isTheme := t.index[key]; isTheme {
				continue
			}
			t.aliases[key] = theme.Name
		}
	}

	for alias, target := range aliases {
		key, canonical := NormalizeName(alias), NormalizeName(target)
		if _, ok := t.index[canonical]; !ok {
			return nil, fmt.Errorf("%w: alias %q targets unknown theme %q", ErrInvalidInput, alias, target)
		}
		if key == canonical {
			continue
		}
		t.aliases[key] = canonical
	}

	for _, b := range blocklist {
		if key := NormalizeName(b); key != "" {
			t.blocked[key] = struct{}{}
		}
	}

	return t, nil
}

// Len returns the number of themes.
func (t *Taxonomy) Len() int {
	return len(t.themes)
}

// Themes returns a copy of the themes in catalogue order.
func (t *Taxonomy) Themes() []TaxonomyTheme {
	out := make([]TaxonomyTheme, len(t.themes))
	copy(out, t.themes)
	return out
}

// Theme returns the theme at position i in catalogue order.
func (t *Taxonomy) Theme(i int) TaxonomyTheme {
	return t.themes[i]
}

// Canonical maps a raw theme name to its canonical form: normalised, then
// alias or synonym resolved. Unknown names are returned normalised.
func (t *Taxonomy) Canonical(name string) string {
	key := NormalizeName(name)
	if target, ok := t.aliases[key]; ok {
		return target
	}
	return key
}

// Lookup finds a theme by canonical name, alias or synonym.
func (t *Taxonomy) Lookup(name string) (TaxonomyTheme, bool) {
	i, ok := t.index[t.Canonical(name)]
	if !ok {
		return TaxonomyTheme{}, false
	}
	return t.themes[i], true
}

// Category returns the category of a known theme, or "" if unknown.
func (t *Taxonomy) Category(name string) Category {
	theme, ok := t.Lookup(name)
	if !ok {
		return ""
	}
	return theme.Category
}

// IsBlocked reports whether name is in the generic-term blocklist, either as
// written (normalised) or after alias resolution.
func (t *Taxonomy) IsBlocked(name string) bool {
	key := NormalizeName(name)
	if _, ok := t.blocked[key]; ok {
		return true
	}
	_, ok := t.blocked[t.Canonical(key)]
	return ok
}

// Blocklist returns the blocked terms in sorted order.
func (t *Taxonomy) Blocklist() []string {
	out := make([]string, 0, len(t.blocked))
	for b := range t.blocked {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Resolve maps free text onto a taxonomy theme. It tries an exact, alias or
// synonym match first, then fuzzy matching: edit-distance similarity of at
// least 0.85 against names and synonyms, then whole-word containment where
// the longest contained theme name wins.
func (t *Taxonomy) Resolve(text string) (TaxonomyTheme, bool) {
	if theme, ok := t.Lookup(text); ok {
		return theme, true
	}
	key := NormalizeName(text)
	if key == "" {
		return TaxonomyTheme{}, false
	}

	bestIdx, bestScore := -1, 0.0
	for i, theme := range t.themes {
		for _, cand := range append([]string{theme.Name}, theme.Synonyms...) {
			score := Similarity(key, NormalizeName(cand))
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
	}
	if bestIdx >= 0 && bestScore >= fuzzySimilarityThreshold {
		return t.themes[bestIdx], true
	}

	bestIdx, bestLen := -1, 0
	for i, theme := range t.themes {
		if len(theme.Name) < minContainmentLength || len(theme.Name) <= bestLen {
			continue
		}
		if containsWords(key, theme.Name) {
			bestIdx, bestLen = i, len(theme.Name)
		}
	}
	if bestIdx >= 0 {
		return t.themes[bestIdx], true
	}
	return TaxonomyTheme{}, false
}

// WithVectors returns a copy of the taxonomy with reference vectors attached,
// one per theme in catalogue order.
func (t *Taxonomy) WithVectors(vectors [][]float32) (*Taxonomy, error) {
	if len(vectors) != len(t.themes) {
		return nil, fmt.Errorf("%w: got %d vectors for %d themes", ErrInvalidInput, len(vectors), len(t.themes))
	}
	out := &Taxonomy{
		themes:  make([]TaxonomyTheme, len(t.themes)),
		index:   t.index,
		aliases: t.aliases,
		blocked: t.blocked,
	}
	for i, theme := range t.themes {
		theme.Vector = append([]float32(nil), vectors[i]...)
		out.themes[i] = theme
	}
	return out, nil
}

// HasVectors returns true if every theme has a reference vector.
func (t *Taxonomy) HasVectors() bool {
	if len(t.themes) == 0 {
		return false
	}
	for _, theme := range t.themes {
		if len(theme.Vector) == 0 {
			return false
		}
	}
	return true
}

// NormalizeName lower-cases, trims and collapses internal whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Similarity returns 1 - levenshtein(a, b)/max(len(a), len(b)) over runes.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// containsWords reports whether needle occurs in haystack on word boundaries.
func containsWords(haystack, needle string) bool {
	for start := 0; start <= len(haystack)-len(needle); {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		if boundary(haystack, i-1) && boundary(haystack, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
