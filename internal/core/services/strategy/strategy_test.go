package strategy

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestInputs_BusinessText(t *testing.T) {
	filing := &domain.SourceDocument{Text: "We design chips."}
	in := NewInputs("NVDA", domain.CompanyProfile{BusinessSummary: " GPU maker "}, filing, nil, nil)
	assert.Equal(t, "We design chips. GPU maker", in.BusinessText())

	assert.Empty(t, NewInputs("X", domain.CompanyProfile{}, nil, nil, nil).BusinessText())
}

func TestInputs_CompanyName(t *testing.T) {
	in := NewInputs("AAPL", domain.CompanyProfile{Name: "Apple Inc."}, nil, nil, nil)
	assert.Equal(t, "Apple Inc.", in.CompanyName())
	assert.True(t, in.HasCompanyName())

	in = NewInputs("AAPL", domain.CompanyProfile{}, nil, nil, nil)
	assert.Equal(t, "AAPL", in.CompanyName())
	assert.False(t, in.HasCompanyName())
}

func TestNotes_Concurrent(t *testing.T) {
	notes := &Notes{}
	in := NewInputs("X", domain.CompanyProfile{}, nil, nil, notes)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.Note(domain.Unavailable{Provider: "gdelt", Reason: domain.ReasonEmpty})
		}()
	}
	wg.Wait()
	assert.Len(t, notes.Items(), 20)

	// Nil notes are ignored.
	NewInputs("X", domain.CompanyProfile{}, nil, nil, nil).Note(domain.Unavailable{})
}

func TestSnippet(t *testing.T) {
	text := "0123456789 target 0123456789"
	assert.Equal(t, "789 target 012", snippet(text, 11, 17, 4))
	assert.Equal(t, text, snippet(text, 0, len(text), 40))

	// Multi-byte runes are never split.
	assert.Equal(t, "é AI", snippet("café AI", 6, 8, 3))
}

func TestBuild(t *testing.T) {
	catalog := testCatalog(t)

	t.Run("all strategies in priority order", func(t *testing.T) {
		strategies, err := Build(domain.DefaultPipelineConfig(), catalog, Deps{})
		require.NoError(t, err)

		var sources []domain.Source
		for _, s := range strategies {
			sources = append(sources, s.Source())
		}
		assert.Equal(t, domain.AllSources(), sources)
	})

	t.Run("disabled strategies are skipped", func(t *testing.T) {
		cfg := domain.DefaultPipelineConfig()
		cfg.DisabledStrategies = []domain.Source{domain.SourceGenerative, domain.SourceSocial}

		strategies, err := Build(cfg, catalog, Deps{})
		require.NoError(t, err)
		assert.Len(t, strategies, 5)
		for _, s := range strategies {
			assert.NotEqual(t, domain.SourceGenerative, s.Source())
			assert.NotEqual(t, domain.SourceSocial, s.Source())
		}
	})

	t.Run("missing catalog", func(t *testing.T) {
		_, err := Build(domain.DefaultPipelineConfig(), nil, Deps{})
		assert.ErrorIs(t, err, domain.ErrMissingService)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		bad := *catalog
		bad.Patterns = []domain.KeywordPattern{{Theme: "cloud computing", Pattern: `(unclosed`}}
		_, err := Build(domain.DefaultPipelineConfig(), &bad, Deps{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStrategies_NoInputYieldsNothing(t *testing.T) {
	strategies, err := Build(domain.DefaultPipelineConfig(), testCatalog(t), Deps{})
	require.NoError(t, err)

	notes := &Notes{}
	in := NewInputs("ZZZZ", domain.CompanyProfile{}, nil, nil, notes)
	for _, s := range strategies {
		assert.Empty(t, s.Extract(context.Background(), in), s.Source())
	}
	assert.NotEmpty(t, notes.Items())
}
