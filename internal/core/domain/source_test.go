package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllSources_PriorityOrder(t *testing.T) {
	sources := AllSources()
	assert.Len(t, sources, 7)
	assert.True(t, sort.SliceIsSorted(sources, func(i, j int) bool {
		return sources[i].Priority() > sources[j].Priority()
	}))

	seen := map[int]bool{}
	for _, s := range sources {
		assert.True(t, s.IsValid(), s)
		assert.False(t, seen[s.Priority()], "priorities must be distinct")
		seen[s.Priority()] = true
	}
}

func TestSource_Priority(t *testing.T) {
	assert.Greater(t, SourceGenerative.Priority(), SourceSemantic.Priority())
	assert.Greater(t, SourceSemantic.Priority(), SourceNews.Priority())
	assert.Greater(t, SourceSocial.Priority(), SourcePattern.Priority())
	assert.Greater(t, SourcePattern.Priority(), SourceCodeMapping.Priority())
	assert.Zero(t, Source("bogus").Priority())
}

func TestSource_IsExternalSignal(t *testing.T) {
	assert.True(t, SourceNews.IsExternalSignal())
	assert.True(t, SourcePatent.IsExternalSignal())
	assert.True(t, SourceSocial.IsExternalSignal())
	assert.False(t, SourcePattern.IsExternalSignal())
	assert.False(t, SourceGenerative.IsExternalSignal())
}

func TestParseSource(t *testing.T) {
	s, ok := ParseSource(" Generative ")
	assert.True(t, ok)
	assert.Equal(t, SourceGenerative, s)

	_, ok = ParseSource("twitter")
	assert.False(t, ok)
}

func TestFilingFallbackOrder(t *testing.T) {
	order := FilingFallbackOrder()
	assert.Equal(t, []OriginKind{OriginQuarterly, OriginAnnual, OriginRegistration}, order)

	forms := make([]string, 0, len(order))
	for _, k := range order {
		assert.True(t, k.IsFiling())
		forms = append(forms, k.FormType())
	}
	assert.Equal(t, []string{"10-Q", "10-K", "S-1"}, forms)

	assert.False(t, OriginNews.IsFiling())
	assert.Empty(t, OriginSocial.FormType())
}
