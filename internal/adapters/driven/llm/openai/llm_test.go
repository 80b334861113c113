package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

const completionJSON = `{"id":"c1","object":"chat.completion","created":1,"model":"kimi-k2-5",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"[{\"theme\":\"AI\"}]"}}]}`

func noRetries() *int {
	n := 0
	return &n
}

func TestGenerate(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int      `json:"max_tokens"`
		Stop      []string `json:"stop"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer mk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "mk", BaseURL: srv.URL + "/", Model: "kimi-k2-5", MaxRetries: noRetries()})
	require.NoError(t, err)

	out, err := s.Generate(context.Background(), "list themes", driven.GenerateOptions{
		System:    "analyst",
		MaxTokens: 512,
		StopWords: []string{"END"},
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"theme":"AI"}]`, out)

	assert.Equal(t, "kimi-k2-5", body.Model)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "analyst", body.Messages[0].Content)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, 512, body.MaxTokens)
	assert.Equal(t, []string{"END"}, body.Stop)
	assert.Equal(t, "kimi-k2-5", s.ModelName())
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  "}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: srv.URL + "/", MaxRetries: noRetries()})
			require.NoError(t, err)
			_, err = s.Generate(context.Background(), "x", driven.GenerateOptions{})
			assert.Error(t, err)
		})
	}
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)
}
