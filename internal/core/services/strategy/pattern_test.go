package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestMatcher_Groups(t *testing.T) {
	m, err := NewMatcher(testCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len(), "aliases fold into their canonical group")
	assert.Nil(t, m.Scan(""))
}

func TestMatcher_Scan(t *testing.T) {
	m, err := NewMatcher(testCatalog(t))
	require.NoError(t, err)

	hits := m.Scan("AI everywhere. Machine learning models and more ai.")
	require.Len(t, hits, 1)
	assert.Equal(t, "artificial intelligence", hits[0].Theme)
	assert.Equal(t, 3, hits[0].Count)
	assert.Equal(t, DefaultSpecificity, hits[0].Specificity)
	assert.Contains(t, hits[0].Evidence, "Machine learning", "evidence comes from the first matching pattern")
}

func TestPattern_Extract(t *testing.T) {
	m, err := NewMatcher(testCatalog(t))
	require.NoError(t, err)
	s := NewPattern(m)
	assert.Equal(t, domain.SourcePattern, s.Source())

	text := filler(300) + "Our wearables use on-device machine learning. Wearables and artificial intelligence drive adoption."
	in := NewInputs("X", domain.CompanyProfile{BusinessSummary: text}, nil, nil, nil)

	got := byTheme(s.Extract(context.Background(), in))
	require.Len(t, got, 2)

	ai := got["artificial intelligence"]
	assert.Equal(t, 0.423, ai.Confidence)
	assert.Equal(t, domain.CategoryTechnology, ai.Category)
	assert.Contains(t, ai.Evidence, "artificial intelligence")

	wear := got["wearable technology"]
	assert.Equal(t, 0.523, wear.Confidence)
	assert.Equal(t, domain.SourcePattern, wear.Source)
}

func TestPattern_ConfidenceCapped(t *testing.T) {
	m, err := NewMatcher(testCatalog(t))
	require.NoError(t, err)

	in := NewInputs("X", domain.CompanyProfile{}, &domain.SourceDocument{Text: "AI AI AI cloud"}, nil, nil)
	got := byTheme(NewPattern(m).Extract(context.Background(), in))

	assert.Equal(t, 0.9, got["artificial intelligence"].Confidence)
	assert.Equal(t, 0.9, got["cloud computing"].Confidence)
}

func TestPattern_EmptyText(t *testing.T) {
	m, err := NewMatcher(testCatalog(t))
	require.NoError(t, err)
	in := NewInputs("X", domain.CompanyProfile{BusinessSummary: "   "}, nil, nil, nil)
	assert.Empty(t, NewPattern(m).Extract(context.Background(), in))
}
