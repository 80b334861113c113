package strategy

import (
	"fmt"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Deps are the optional collaborators of the external-signal and
// generative strategies. Nil members produce empty results.
type Deps struct {
	News      driven.NewsProvider
	Patents   driven.PatentProvider
	Social    driven.SocialProvider
	Generator driven.ThemeGenerator
}

// Build creates the enabled strategies in priority order.
func Build(cfg domain.PipelineConfig, catalog *domain.Catalog, deps Deps) ([]Strategy, error) {
	if catalog == nil || catalog.Taxonomy == nil {
		return nil, fmt.Errorf("%w: catalog", domain.ErrMissingService)
	}
	matcher, err := NewMatcher(catalog)
	if err != nil {
		return nil, err
	}

	all := map[domain.Source]Strategy{
		domain.SourceGenerative:  NewGenerative(catalog, deps.Generator, cfg),
		domain.SourceSemantic:    NewSemantic(),
		domain.SourceNews:        NewNews(catalog, deps.News, cfg.NewsLookback),
		domain.SourcePatent:      NewPatent(catalog, deps.Patents),
		domain.SourceSocial:      NewSocial(matcher, deps.Social, cfg.SocialLookback),
		domain.SourcePattern:     NewPattern(matcher),
		domain.SourceCodeMapping: NewCodeMapping(catalog),
	}

	out := make([]Strategy, 0, len(all))
	for _, src := range domain.AllSources() {
		if cfg.StrategyEnabled(src) {
			out = append(out, all[src])
		}
	}
	return out, nil
}
