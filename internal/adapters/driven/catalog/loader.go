package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.CatalogLoader = (*Loader)(nil)

//go:embed catalog.yaml
var defaultCatalog []byte

// Default returns the embedded catalogue document.
func Default() []byte {
	out := make([]byte, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// file is the YAML document layout.
type file struct {
	Themes     []themeEntry                    `yaml:"themes"`
	Aliases    map[string]string               `yaml:"aliases"`
	Blocklist  []string                        `yaml:"blocklist"`
	SIC        map[string][]domain.CodeMapping `yaml:"sic"`
	Sectors    map[string][]domain.CodeMapping `yaml:"sectors"`
	Industries map[string][]domain.CodeMapping `yaml:"industries"`
	CPC        map[string][]string             `yaml:"cpc"`
	News       map[string]string               `yaml:"news"`
	Patterns   []patternGroup                  `yaml:"patterns"`
}

type themeEntry struct {
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Synonyms    []string `yaml:"synonyms"`
}

type patternGroup struct {
	Theme       string   `yaml:"theme"`
	Specificity float64  `yaml:"specificity"`
	Regex       []string `yaml:"regex"`
}

// Loader reads the catalogue from a YAML file, or from the embedded
// default when no path is set.
type Loader struct {
	path string
	data []byte
}

// NewLoader creates a loader. An empty path selects the embedded catalogue.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// NewLoaderFromBytes creates a loader over an in-memory document.
func NewLoaderFromBytes(data []byte) *Loader {
	return &Loader{data: data}
}

// Load parses and validates the catalogue. Every table entry must resolve
// to a taxonomy theme and every pattern must compile.
func (l *Loader) Load() (*domain.Catalog, error) {
	raw, err := l.read()
	if err != nil {
		return nil, err
	}

	var doc file
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrConfigInvalid, err)
	}
	return build(doc)
}

func (l *Loader) read() ([]byte, error) {
	if l.data != nil {
		return l.data, nil
	}
	if l.path == "" {
		return defaultCatalog, nil
	}
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", l.path, err)
	}
	return raw, nil
}

func build(doc file) (*domain.Catalog, error) {
	if len(doc.Themes) == 0 {
		return nil, fmt.Errorf("%w: catalog has no themes", domain.ErrConfigInvalid)
	}

	themes := make([]domain.TaxonomyTheme, 0, len(doc.Themes))
	for _, t := range doc.Themes {
		themes = append(themes, domain.TaxonomyTheme{
			Name:        t.Name,
			Category:    domain.Category(strings.TrimSpace(t.Category)),
			Description: strings.TrimSpace(t.Description),
			Synonyms:    t.Synonyms,
		})
	}
	tax, err := domain.NewTaxonomy(themes, doc.Aliases, doc.Blocklist)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", domain.ErrConfigInvalid, err)
	}

	cat := &domain.Catalog{
		Taxonomy:   tax,
		CPCCodes:   make(map[string][]string, len(doc.CPC)),
		NewsThemes: make(map[string]string, len(doc.News)),
	}
	if cat.SICCodes, err = codeTable(tax, "sic", doc.SIC); err != nil {
		return nil, err
	}
	if cat.Sectors, err = codeTable(tax, "sectors", doc.Sectors); err != nil {
		return nil, err
	}
	if cat.Industries, err = codeTable(tax, "industries", doc.Industries); err != nil {
		return nil, err
	}

	for code, names := range doc.CPC {
		key := strings.ToUpper(strings.TrimSpace(code))
		for _, name := range names {
			if err := known(tax, "cpc "+key, name); err != nil {
				return nil, err
			}
		}
		cat.CPCCodes[key] = names
	}
	for code, name := range doc.News {
		key := strings.ToUpper(strings.TrimSpace(code))
		if err := known(tax, "news "+key, name); err != nil {
			return nil, err
		}
		cat.NewsThemes[key] = name
	}

	for i, g := range doc.Patterns {
		if err := known(tax, fmt.Sprintf("pattern group %d", i), g.Theme); err != nil {
			return nil, err
		}
		if g.Specificity < 0 || g.Specificity > 1 {
			return nil, fmt.Errorf("%w: pattern group %d: specificity %.2f out of range", domain.ErrConfigInvalid, i, g.Specificity)
		}
		for _, expr := range g.Regex {
			if _, err := regexp.Compile("(?i)" + expr); err != nil {
				return nil, fmt.Errorf("%w: pattern %q: %v", domain.ErrConfigInvalid, expr, err)
			}
			cat.Patterns = append(cat.Patterns, domain.KeywordPattern{
				Theme:       tax.Canonical(g.Theme),
				Pattern:     expr,
				Specificity: g.Specificity,
			})
		}
	}

	return cat, nil
}

func codeTable(tax *domain.Taxonomy, table string, in map[string][]domain.CodeMapping) (domain.CodeTable, error) {
	out := make(domain.CodeTable, len(in))
	for code, mappings := range in {
		key := domain.NormalizeCode(code)
		for _, m := range mappings {
			if err := known(tax, table+" "+key, m.Theme); err != nil {
				return nil, err
			}
			if m.Confidence < 0 || m.Confidence > 1 {
				return nil, fmt.Errorf("%w: %s %s: confidence %.2f out of range", domain.ErrConfigInvalid, table, key, m.Confidence)
			}
		}
		out[key] = append(out[key], mappings...)
	}
	return out, nil
}

func known(tax *domain.Taxonomy, where, name string) error {
	if _, ok := tax.Lookup(name); !ok {
		return fmt.Errorf("%w: %s: unknown theme %q", domain.ErrConfigInvalid, where, name)
	}
	return nil
}
