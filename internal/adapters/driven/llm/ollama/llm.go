// Package ollama generates text with a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures LLMService. Zero fields take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/generate without streaming.
type LLMService struct {
	client *httpclient.Client
	root   string
	model  string
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options *samplingParams `json:"options,omitempty"`
}

type samplingParams struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type generateReply struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService builds a service; nothing is contacted until the first call.
func NewLLMService(cfg LLMConfig) *LLMService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	return &LLMService{
		client: httpclient.New("ollama", nil, httpclient.WithTimeout(timeout)),
		root:   apiRoot(cfg.BaseURL),
		model:  model,
	}
}

func apiRoot(base string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/api"
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var reply generateReply
	err := s.client.PostJSON(ctx, s.root+"/generate", generateRequest{
		Model:  s.model,
		Prompt: prompt,
		System: opts.System,
		Options: &samplingParams{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.StopWords,
		},
	}, &reply)
	if err != nil {
		return "", err
	}
	if reply.Error != "" {
		return "", errors.New("ollama: " + reply.Error)
	}
	return reply.Response, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists the installed models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.client.Get(ctx, httpclient.Request{URL: s.root + "/tags"})
	return err
}

func (s *LLMService) Close() error { return nil }
