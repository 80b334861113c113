package strategy

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// testCatalog returns a small catalogue covering every strategy table.
func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	tax, err := domain.NewTaxonomy(
		[]domain.TaxonomyTheme{
			{Name: "artificial intelligence", Category: domain.CategoryTechnology, Synonyms: []string{"AI", "machine learning"}},
			{Name: "cloud computing", Category: domain.CategoryTechnology},
			{Name: "consumer electronics", Category: domain.CategoryConsumer},
			{Name: "wearable technology", Category: domain.CategoryConsumer, Synonyms: []string{"wearables"}},
			{Name: "semiconductors", Category: domain.CategoryTechnology, Synonyms: []string{"chips"}},
			{Name: "electric vehicles", Category: domain.CategoryEnergy, Synonyms: []string{"EV"}},
		},
		map[string]string{"genai": "artificial intelligence"},
		[]string{"technology", "growth"},
	)
	require.NoError(t, err)

	return &domain.Catalog{
		Taxonomy: tax,
		SICCodes: domain.CodeTable{
			"3571": {{Theme: "consumer electronics", Confidence: 0.7}},
			"3500": {{Theme: "consumer electronics"}, {Theme: "cloud computing"}},
		},
		Sectors:    domain.CodeTable{"technology": {{Theme: "cloud computing"}}},
		Industries: domain.CodeTable{"consumer electronics": {{Theme: "wearables"}}},
		CPCCodes: map[string][]string{
			"G06N": {"artificial intelligence"},
			"H01L": {"semiconductors"},
			"B60":  {"electric vehicles"},
		},
		NewsThemes: map[string]string{
			"TECH_AI": "artificial intelligence",
			"WB_":     "cloud computing",
			"WB_2945": "chips",
		},
		Patterns: []domain.KeywordPattern{
			{Theme: "artificial intelligence", Pattern: `\bartificial intelligence\b`},
			{Theme: "artificial intelligence", Pattern: `\bmachine learning\b`},
			{Theme: "AI", Pattern: `\bAI\b`},
			{Theme: "wearable technology", Pattern: `\bwearables?\b`, Specificity: 0.45},
			{Theme: "cloud computing", Pattern: `\bcloud\b`},
		},
	}
}

type mockNewsProvider struct {
	out      domain.Outcome[domain.NewsSignal]
	gotName  string
	lookback time.Duration
}

func (m *mockNewsProvider) FetchNews(_ context.Context, companyName string, lookback time.Duration) domain.Outcome[domain.NewsSignal] {
	m.gotName = companyName
	m.lookback = lookback
	return m.out
}

type mockPatentProvider struct {
	out     domain.Outcome[domain.PatentSignal]
	gotName string
}

func (m *mockPatentProvider) FetchPatents(_ context.Context, companyName string) domain.Outcome[domain.PatentSignal] {
	m.gotName = companyName
	return m.out
}

type mockSocialProvider struct {
	out       domain.Outcome[domain.SocialSignal]
	gotTicker string
}

func (m *mockSocialProvider) FetchSocial(_ context.Context, ticker string, _ time.Duration) domain.Outcome[domain.SocialSignal] {
	m.gotTicker = ticker
	return m.out
}

type mockThemeGenerator struct {
	out    domain.Outcome[[]domain.GeneratedTheme]
	gotReq domain.GenerationRequest
	calls  int
}

func (m *mockThemeGenerator) GenerateThemes(_ context.Context, req domain.GenerationRequest) domain.Outcome[[]domain.GeneratedTheme] {
	m.calls++
	m.gotReq = req
	return m.out
}

// byTheme indexes candidates by theme name.
func byTheme(cands []domain.ThemeCandidate) map[string]domain.ThemeCandidate {
	out := make(map[string]domain.ThemeCandidate, len(cands))
	for _, c := range cands {
		out[c.Theme] = c
	}
	return out
}

func filler(words int) string {
	return strings.Repeat("filler ", words)
}
