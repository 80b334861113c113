package postprocessors

import (
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/postprocessors/chunker"
	"github.com/custodia-labs/stockthemes/internal/postprocessors/dedupe"
)

// RegisterDefaults adds the built-in stages: "chunker" and "dedupe".
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, func(cfg domain.PipelineConfig) (driven.PostProcessor, error) {
		return chunker.New(chunker.WithMaxWords(cfg.MaxWords)), nil
	})
	r.Register(dedupe.Name, func(domain.PipelineConfig) (driven.PostProcessor, error) {
		return dedupe.New(), nil
	})
}

// DefaultPipeline builds the stages named by cfg from the built-ins.
func DefaultPipeline(cfg domain.PipelineConfig) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(cfg)
}
