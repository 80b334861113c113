package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("pipeline.max_words", int64(250)))
	require.NoError(t, s.Set("pipeline.max_themes", 12.0))
	require.NoError(t, s.Set("pipeline.similarity_threshold", 0.65))
	require.NoError(t, s.Set("pipeline.allow_off_taxonomy", true))
	require.NoError(t, s.Set("llm.model", "gpt-4o-mini"))
	require.NoError(t, s.Set("pipeline.processors", []any{"chunker", 7, "dedupe"}))

	assert.Equal(t, 250, s.GetInt("pipeline.max_words"))
	assert.Equal(t, 12, s.GetInt("pipeline.max_themes"))
	assert.InDelta(t, 0.65, s.GetFloat("pipeline.similarity_threshold"), 1e-9)
	assert.InDelta(t, 250.0, s.GetFloat("pipeline.max_words"), 1e-9)
	assert.True(t, s.GetBool("pipeline.allow_off_taxonomy"))
	assert.Equal(t, "gpt-4o-mini", s.GetString("llm.model"))
	assert.Equal(t, []string{"chunker", "dedupe"}, s.GetStringSlice("pipeline.processors"))
	assert.Equal(t, 6, s.Len())
}

func TestConfigStore_MissingAndMistyped(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("batch.concurrency", "four"))
	require.NoError(t, s.Set("llm.model", 3))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"missing string", s.GetString("storage.backend"), ""},
		{"missing int", s.GetInt("batch.max_failures"), 0},
		{"missing float", s.GetFloat("pipeline.similarity_threshold"), 0.0},
		{"missing bool", s.GetBool("cache.enabled"), false},
		{"missing slice", s.GetStringSlice("pipeline.processors"), []string(nil)},
		{"string as int", s.GetInt("batch.concurrency"), 0},
		{"int as string", s.GetString("llm.model"), ""},
		{"string as bool", s.GetBool("batch.concurrency"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	_, ok := s.Get("storage.backend")
	assert.False(t, ok)
}

func TestConfigStore_SetCopiesSlices(t *testing.T) {
	s := NewConfigStore()
	disabled := []string{"patent", "social"}
	require.NoError(t, s.Set("pipeline.disabled_strategies", disabled))

	disabled[0] = "news"
	assert.Equal(t, []string{"patent", "social"}, s.GetStringSlice("pipeline.disabled_strategies"))
}

func TestConfigStore_Persistence(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("scheduler.enabled", true))
	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
	assert.True(t, s.GetBool("scheduler.enabled"))
	assert.Equal(t, ":memory:", s.Path())

	other := NewConfigStore()
	assert.False(t, other.GetBool("scheduler.enabled"))
}

func TestConfigStore_Concurrent(t *testing.T) {
	s := NewConfigStore()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("scheduler.task-%d.enabled", i%5)
			_ = s.Set(key, i%2 == 0)
			_ = s.GetBool(key)
			_ = s.Len()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, s.Len())
}
