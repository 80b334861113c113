// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 768

	// maxBatch bounds the inputs sent in one /api/embed call.
	maxBatch = 64
)

// Config configures EmbeddingService. Zero fields take the defaults above.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// HTTPClient replaces the timeout-bound default client.
	HTTPClient *http.Client
}

// EmbeddingService calls /api/embed.
type EmbeddingService struct {
	client *httpclient.Client
	root   string
	model  string
	dims   int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	s := &EmbeddingService{
		client: httpclient.New("ollama", nil,
			httpclient.WithTimeout(timeout),
			httpclient.WithHTTPClient(cfg.HTTPClient)),
		root:  strings.TrimRight(base, "/") + "/api",
		model: cfg.Model,
		dims:  cfg.Dimensions,
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.dims <= 0 {
		s.dims = DefaultDimensions
	}
	return s
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch keeps input order and splits long inputs into maxBatch chunks.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for chunk := range slices.Chunk(texts, maxBatch) {
		vecs, err := s.embed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	var resp embedResponse
	if err := s.client.PostJSON(ctx, s.root+"/embed", embedRequest{Model: s.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	switch {
	case resp.Error != "":
		return nil, errors.New("ollama: " + resp.Error)
	case len(resp.Embeddings) != len(texts):
		return nil, fmt.Errorf("ollama: %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dims }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists the installed models, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.client.Get(ctx, httpclient.Request{URL: s.root + "/tags"})
	return err
}

func (s *EmbeddingService) Close() error { return nil }
