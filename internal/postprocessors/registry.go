package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Builder constructs one stage from the pipeline settings.
type Builder func(cfg domain.PipelineConfig) (driven.PostProcessor, error)

// Registry resolves the stage names listed in PipelineConfig.Processors.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry creates an empty registry. RegisterDefaults adds the built-ins.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]Builder{}}
}

// Register adds b under name. A later registration replaces an earlier one.
func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

// Has reports whether a builder is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}

// Build constructs the stage registered under name.
func (r *Registry) Build(name string, cfg domain.PipelineConfig) (driven.PostProcessor, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor %q (have %s)", name, strings.Join(r.Names(), ", "))
	}
	stage, err := b(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return stage, nil
}

// BuildPipeline builds cfg.Processors in the listed order. The list must
// start with the chunker: every other stage works on chunks it produced.
func (r *Registry) BuildPipeline(cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 || cfg.Processors[0] != domain.ChunkerStage {
		return nil, fmt.Errorf("%w: processors %v must start with %s", domain.ErrConfigInvalid, cfg.Processors, domain.ChunkerStage)
	}
	p := NewPipeline()
	for _, name := range cfg.Processors {
		stage, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		p.Add(stage)
	}
	return p, nil
}
