package strategy

import (
	"context"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Generative asks a language model for themes grounded in the filtered
// chunks and resolves its free-text answers onto the taxonomy.
type Generative struct {
	generator driven.ThemeGenerator
	tax       *domain.Taxonomy
	cfg       domain.PipelineConfig
}

// NewGenerative creates the generative strategy. generator may be nil.
func NewGenerative(catalog *domain.Catalog, generator driven.ThemeGenerator, cfg domain.PipelineConfig) *Generative {
	return &Generative{generator: generator, tax: catalog.Taxonomy, cfg: cfg}
}

// Source returns domain.SourceGenerative.
func (s *Generative) Source() domain.Source {
	return domain.SourceGenerative
}

// Extract runs only for companies at or above the market-cap gate.
func (s *Generative) Extract(ctx context.Context, in Inputs) []domain.ThemeCandidate {
	if in.Profile.MarketCap < s.cfg.GenerativeMarketCapGate {
		in.Note(domain.Unavailable{Provider: "generative", Reason: domain.ReasonGated})
		return nil
	}
	if s.generator == nil {
		in.Note(domain.Unavailable{Provider: "generative", Reason: domain.ReasonNoCredential})
		return nil
	}
	passages := s.passages(in.Chunks)
	if len(passages) == 0 {
		in.Note(domain.Unavailable{Provider: "generative", Reason: domain.ReasonEmpty})
		return nil
	}

	out := s.generator.GenerateThemes(ctx, domain.GenerationRequest{
		Ticker:      in.Ticker,
		CompanyName: in.CompanyName(),
		Sector:      in.Profile.Sector,
		Industry:    in.Profile.Industry,
		Passages:    passages,
		TokenBudget: s.cfg.GenerativeTokenBudget,
	})
	generated, ok := out.Get()
	if !ok {
		in.Note(out.Unavailable())
		return nil
	}

	c := newCollector()
	for _, g := range generated {
		cand, ok := s.resolve(g)
		if !ok {
			continue
		}
		c.add(cand)
	}
	return c.candidates()
}

func (s *Generative) passages(chunks []domain.FilteredChunk) []string {
	limit := s.cfg.GenerativeMaxChunks
	out := make([]string, 0, min(len(chunks), max(limit, 0)))
	for _, ch := range chunks {
		if limit > 0 && len(out) >= limit {
			break
		}
		if text := strings.TrimSpace(ch.Text); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func (s *Generative) resolve(g domain.GeneratedTheme) (domain.ThemeCandidate, bool) {
	conf := s.cfg.GenerativeDefaultConfidence
	if g.HasConfidence {
		conf = g.Confidence
	}
	cand := domain.ThemeCandidate{
		Confidence: round3(domain.Clamp01(conf)),
		Source:     domain.SourceGenerative,
		Evidence:   "model: " + strings.TrimSpace(g.Text),
	}

	if theme, ok := s.tax.Resolve(g.Text); ok {
		cand.Theme, cand.Category = theme.Name, theme.Category
		return cand, true
	}
	if !s.cfg.AllowOffTaxonomy {
		return cand, false
	}
	name := domain.NormalizeName(g.Text)
	if name == "" || s.tax.IsBlocked(name) {
		return cand, false
	}
	cand.Theme, cand.Category = name, domain.CategoryMacro
	return cand, true
}
