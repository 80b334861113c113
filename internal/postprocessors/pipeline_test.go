package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// stubStage records what it was handed and replies with fixed output.
type stubStage struct {
	name string
	out  []domain.TextChunk
	err  error
	got  []domain.TextChunk
	seen bool
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Process(_ context.Context, _ *domain.SourceDocument, in []domain.TextChunk) ([]domain.TextChunk, error) {
	s.seen = true
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func annual(text string) *domain.SourceDocument {
	return &domain.SourceDocument{Ticker: "TEST", Origin: domain.OriginAnnual, Text: text}
}

func TestPipeline_Process(t *testing.T) {
	first := &stubStage{name: "split", out: []domain.TextChunk{{Text: "a"}}}
	second := &stubStage{name: "rewrite", out: []domain.TextChunk{{Text: "b"}, {Ordinal: 1, Text: "c"}}}
	p := NewPipeline(first)
	p.Add(second)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"split", "rewrite"}, p.Names())

	chunks, err := p.Process(context.Background(), annual("body"))
	require.NoError(t, err)
	assert.Nil(t, first.got)
	assert.Equal(t, first.out, second.got)
	assert.Equal(t, second.out, chunks)
}

func TestPipeline_ProcessErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("nil document", func(t *testing.T) {
		_, err := NewPipeline().Process(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("empty pipeline yields nothing", func(t *testing.T) {
		chunks, err := NewPipeline().Process(context.Background(), annual("x"))
		require.NoError(t, err)
		assert.Nil(t, chunks)
	})

	t.Run("stage failure stops the run", func(t *testing.T) {
		after := &stubStage{name: "after"}
		_, err := NewPipeline(&stubStage{name: "bad", err: boom}, after).Process(context.Background(), annual("x"))
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "bad stage on TEST/annual")
		assert.False(t, after.seen)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		stage := &stubStage{name: "split"}
		_, err := NewPipeline(stage).Process(ctx, annual("x"))
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, stage.seen)
	})
}

func TestDefaultPipeline(t *testing.T) {
	cfg := domain.DefaultPipelineConfig()
	cfg.MaxWords = 3
	cfg.Processors = []string{"chunker", "dedupe"}

	p, err := DefaultPipeline(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"chunker", "dedupe"}, p.Names())

	chunks, err := p.Process(context.Background(), annual("safe harbor notice SAFE HARBOR NOTICE we sell chips"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "we sell chips", chunks[1].Text)
	assert.Equal(t, 1, chunks[1].Ordinal)
	assert.Equal(t, "TEST/annual", chunks[0].DocumentRef)

	cfg.Processors = []string{"chunker", "stemmer"}
	_, err = DefaultPipeline(cfg)
	assert.ErrorContains(t, err, `unknown processor "stemmer"`)
}

func TestDefaultPipeline_ChunkerFirst(t *testing.T) {
	for _, stages := range [][]string{nil, {"dedupe"}, {"dedupe", "chunker"}} {
		cfg := domain.DefaultPipelineConfig()
		cfg.Processors = stages
		_, err := DefaultPipeline(cfg)
		assert.ErrorIs(t, err, domain.ErrConfigInvalid, "%v", stages)
	}
}
