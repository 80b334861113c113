package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func generativeChunks(texts ...string) []domain.FilteredChunk {
	out := make([]domain.FilteredChunk, len(texts))
	for i, text := range texts {
		out[i] = domain.FilteredChunk{TextChunk: domain.TextChunk{Ordinal: i, Text: text}}
	}
	return out
}

func TestGenerative_Extract(t *testing.T) {
	gen := &mockThemeGenerator{out: domain.Available([]domain.GeneratedTheme{
		{Text: "machine learning"},
		{Text: "AI", Confidence: 0.9, HasConfidence: true},
		{Text: "Wearables", Confidence: 1.4, HasConfidence: true},
		{Text: "timber harvesting", Confidence: 0.5, HasConfidence: true},
	})}
	cfg := domain.DefaultPipelineConfig()
	cfg.GenerativeMaxChunks = 2
	s := NewGenerative(testCatalog(t), gen, cfg)
	assert.Equal(t, domain.SourceGenerative, s.Source())

	profile := domain.CompanyProfile{Name: "Apple Inc.", Sector: "Technology", Industry: "Consumer Electronics", MarketCap: 2e9}
	in := NewInputs("AAPL", profile, nil, generativeChunks("one", " ", "two", "three"), nil)

	got := byTheme(s.Extract(context.Background(), in))

	assert.Equal(t, []string{"one", "two"}, gen.gotReq.Passages)
	assert.Equal(t, cfg.GenerativeTokenBudget, gen.gotReq.TokenBudget)
	assert.Equal(t, "Apple Inc.", gen.gotReq.CompanyName)
	assert.Equal(t, "Consumer Electronics", gen.gotReq.Industry)

	require.Len(t, got, 2, "off-taxonomy themes are discarded")
	assert.Equal(t, 0.9, got["artificial intelligence"].Confidence, "duplicates collapse to the maximum")
	assert.Equal(t, 1.0, got["wearable technology"].Confidence)
	assert.Equal(t, domain.CategoryConsumer, got["wearable technology"].Category)
}

func TestGenerative_DefaultConfidence(t *testing.T) {
	gen := &mockThemeGenerator{out: domain.Available([]domain.GeneratedTheme{{Text: "chips"}})}
	s := NewGenerative(testCatalog(t), gen, domain.DefaultPipelineConfig())

	in := NewInputs("X", domain.CompanyProfile{MarketCap: 5e9}, nil, generativeChunks("fab capacity"), nil)
	got := s.Extract(context.Background(), in)

	require.Len(t, got, 1)
	assert.Equal(t, "semiconductors", got[0].Theme)
	assert.Equal(t, 0.7, got[0].Confidence)
	assert.Equal(t, "model: chips", got[0].Evidence)
}

func TestGenerative_AllowOffTaxonomy(t *testing.T) {
	gen := &mockThemeGenerator{out: domain.Available([]domain.GeneratedTheme{
		{Text: "Timber  Harvesting", Confidence: 0.5, HasConfidence: true},
		{Text: "Growth", Confidence: 0.9, HasConfidence: true},
	})}
	cfg := domain.DefaultPipelineConfig()
	cfg.AllowOffTaxonomy = true
	s := NewGenerative(testCatalog(t), gen, cfg)

	in := NewInputs("X", domain.CompanyProfile{MarketCap: 5e9}, nil, generativeChunks("forestry"), nil)
	got := s.Extract(context.Background(), in)

	require.Len(t, got, 1, "blocklisted names never pass through")
	assert.Equal(t, "timber harvesting", got[0].Theme)
	assert.Equal(t, domain.CategoryMacro, got[0].Category)
}

func TestGenerative_Gated(t *testing.T) {
	tests := []struct {
		name      string
		marketCap float64
		chunks    []domain.FilteredChunk
		generator *mockThemeGenerator
		reason    domain.UnavailableReason
	}{
		{
			name:      "below market cap gate",
			marketCap: 5e8,
			chunks:    generativeChunks("text"),
			generator: &mockThemeGenerator{},
			reason:    domain.ReasonGated,
		},
		{
			name:      "no filtered chunks",
			marketCap: 2e9,
			generator: &mockThemeGenerator{},
			reason:    domain.ReasonEmpty,
		},
		{
			name:      "generator unavailable",
			marketCap: 2e9,
			chunks:    generativeChunks("text"),
			generator: &mockThemeGenerator{out: domain.Missing[[]domain.GeneratedTheme]("llm", domain.ReasonFailed, nil)},
			reason:    domain.ReasonFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := &Notes{}
			s := NewGenerative(testCatalog(t), tt.generator, domain.DefaultPipelineConfig())
			in := NewInputs("X", domain.CompanyProfile{MarketCap: tt.marketCap}, nil, tt.chunks, notes)

			assert.Empty(t, s.Extract(context.Background(), in))
			require.Len(t, notes.Items(), 1)
			assert.Equal(t, tt.reason, notes.Items()[0].Reason)
		})
	}
}

func TestGenerative_AtGateRuns(t *testing.T) {
	gen := &mockThemeGenerator{out: domain.Available([]domain.GeneratedTheme{{Text: "cloud computing"}})}
	cfg := domain.DefaultPipelineConfig()
	s := NewGenerative(testCatalog(t), gen, cfg)

	in := NewInputs("X", domain.CompanyProfile{MarketCap: cfg.GenerativeMarketCapGate}, nil, generativeChunks("text"), nil)
	assert.Len(t, s.Extract(context.Background(), in), 1)
	assert.Equal(t, 1, gen.calls)
}
