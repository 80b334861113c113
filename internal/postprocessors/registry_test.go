package postprocessors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	var words int
	r.Register("lower", func(cfg domain.PipelineConfig) (driven.PostProcessor, error) {
		words = cfg.MaxWords
		return &stubStage{name: "lower"}, nil
	})
	r.Register("broken", func(domain.PipelineConfig) (driven.PostProcessor, error) {
		return nil, errors.New("no dictionary")
	})

	cfg := domain.DefaultPipelineConfig()
	cfg.MaxWords = 42
	stage, err := r.Build("lower", cfg)
	require.NoError(t, err)
	assert.Equal(t, "lower", stage.Name())
	assert.Equal(t, 42, words)

	_, err = r.Build("broken", cfg)
	assert.ErrorContains(t, err, "build broken: no dictionary")

	_, err = r.Build("missing", cfg)
	assert.ErrorContains(t, err, "have broken, lower")

	assert.True(t, r.Has("lower"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, []string{"broken", "lower"}, r.Names())
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	assert.Equal(t, []string{"chunker", "dedupe"}, r.Names())
}
