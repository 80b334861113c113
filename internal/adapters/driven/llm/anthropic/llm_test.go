package anthropic

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

const messageJSON = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-sonnet-latest",
"content":[{"type":"text","text":"[\"Cloud\","},{"type":"text","text":"\"AI\"]"}],
"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`

func noRetries() *int {
	n := 0
	return &n
}

func TestGenerate(t *testing.T) {
	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		StopSequences []string `json:"stop_sequences"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageJSON))
	}))
	defer srv.Close()

	s, err := NewLLMService(Config{APIKey: "ak", BaseURL: srv.URL, MaxRetries: noRetries()})
	require.NoError(t, err)

	out, err := s.Generate(context.Background(), "themes", driven.GenerateOptions{System: "analyst", StopWords: []string{"###"}})
	require.NoError(t, err)
	assert.Equal(t, `["Cloud","AI"]`, out)

	assert.Equal(t, DefaultModel, body.Model)
	assert.Equal(t, DefaultMaxTokens, body.MaxTokens)
	require.Len(t, body.System, 1)
	assert.Equal(t, "analyst", body.System[0].Text)
	assert.Equal(t, []string{"###"}, body.StopSequences)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`},
		{"no text", http.StatusOK, `{"id":"m","type":"message","role":"assistant","content":[],"stop_reason":"end_turn"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s, err := NewLLMService(Config{APIKey: "k", BaseURL: srv.URL, MaxRetries: noRetries()})
			require.NoError(t, err)
			_, err = s.Generate(context.Background(), "x", driven.GenerateOptions{})
			assert.Error(t, err)
		})
	}
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)
}
