// Package themes turns an LLMService into a ThemeGenerator: it builds the
// prompt from filtered passages, keeps it within a token budget and parses
// the model's JSON answer.
package themes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/ratelimit"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Generator implements the interfaces.
var (
	_ driven.ThemeGenerator   = (*Generator)(nil)
	_ driven.PromptStoreAware = (*Generator)(nil)
)

// ProviderName is reported in unavailable outcomes.
const ProviderName = "llm"

const (
	temperature = 0.2
	maxTokens   = 600
)

// ErrUnparseable indicates the model answered with something other than a theme list.
var ErrUnparseable = errors.New("unparseable theme response")

// Generator asks a language model for investment themes.
type Generator struct {
	llm     driven.LLMService
	limiter *ratelimit.Limiter
	counter TokenCounter

	mu      sync.RWMutex
	prompts driven.PromptStore
}

// Option configures a Generator.
type Option func(*Generator)

// WithTokenCounter replaces the default tiktoken counter.
func WithTokenCounter(c TokenCounter) Option {
	return func(g *Generator) { g.counter = c }
}

// New creates a generator. llm may be nil, in which case every request is
// reported as missing credentials. limiter may be nil.
func New(llm driven.LLMService, limiter *ratelimit.Limiter, opts ...Option) *Generator {
	g := &Generator{llm: llm, limiter: limiter}
	for _, opt := range opts {
		opt(g)
	}
	if g.counter == nil {
		g.counter = NewTiktokenCounter("")
	}
	return g
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = store
}

// GenerateThemes asks the model for themes grounded in req.Passages.
func (g *Generator) GenerateThemes(ctx context.Context, req domain.GenerationRequest) domain.Outcome[[]domain.GeneratedTheme] {
	if g.llm == nil {
		return domain.Missing[[]domain.GeneratedTheme](ProviderName, domain.ReasonNoCredential, domain.ErrLLMUnavailable)
	}
	passages := g.fitBudget(req.Passages, req.TokenBudget)
	if len(passages) == 0 {
		return domain.Missing[[]domain.GeneratedTheme](ProviderName, domain.ReasonEmpty, nil)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return domain.Missing[[]domain.GeneratedTheme](ProviderName, domain.ReasonFor(err), err)
		}
	}

	prompt := fmt.Sprintf(g.load(driven.PromptThemeExtraction),
		companyLabel(req), orUnknown(req.Sector), orUnknown(req.Industry), strings.Join(passages, "\n\n"))

	logger.Debug("llm: %s: %d passages to %s", req.Ticker, len(passages), g.llm.ModelName())
	raw, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:      g.load(driven.PromptThemeSystem),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return domain.Missing[[]domain.GeneratedTheme](ProviderName, domain.ReasonFor(err), err)
	}

	themes, err := ParseThemes(raw)
	if err != nil {
		logger.Debug("llm: %s: %v", req.Ticker, err)
		return domain.Missing[[]domain.GeneratedTheme](ProviderName, domain.ReasonFailed, err)
	}
	return domain.Available(themes)
}

// fitBudget keeps passages in order until the next one would exceed budget.
func (g *Generator) fitBudget(passages []string, budget int) []string {
	kept := make([]string, 0, len(passages))
	used := 0
	for _, p := range passages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if budget > 0 {
			n := g.counter.Count(p)
			if used+n > budget {
				break
			}
			used += n
		}
		kept = append(kept, p)
	}
	return kept
}

func (g *Generator) load(name string) string {
	g.mu.RLock()
	store := g.prompts
	g.mu.RUnlock()

	if store != nil {
		if prompt, err := store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return driven.DefaultPrompts[name]
}

func companyLabel(req domain.GenerationRequest) string {
	switch {
	case req.CompanyName != "" && req.Ticker != "" && req.CompanyName != req.Ticker:
		return fmt.Sprintf("%s (%s)", req.CompanyName, req.Ticker)
	case req.CompanyName != "":
		return req.CompanyName
	default:
		return req.Ticker
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// ParseThemes reads a model answer. It accepts a JSON array or an object
// with a "themes" array, optionally inside a markdown code fence. Elements
// may be {"theme", "confidence"} objects or bare strings.
func ParseThemes(raw string) ([]domain.GeneratedTheme, error) {
	text := stripFence(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var wrapped struct {
			Themes []json.RawMessage `json:"themes"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil || wrapped.Themes == nil {
			return nil, fmt.Errorf("%w: %.80q", ErrUnparseable, text)
		}
		items = wrapped.Themes
	}

	themes := make([]domain.GeneratedTheme, 0, len(items))
	for _, item := range items {
		g, ok := parseItem(item)
		if !ok {
			continue
		}
		themes = append(themes, g)
	}
	return themes, nil
}

func parseItem(item json.RawMessage) (domain.GeneratedTheme, bool) {
	var name string
	if err := json.Unmarshal(item, &name); err == nil {
		name = strings.ToLower(strings.TrimSpace(name))
		return domain.GeneratedTheme{Text: name}, name != ""
	}

	var obj struct {
		Theme      string   `json:"theme"`
		Name       string   `json:"name"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(item, &obj); err != nil {
		return domain.GeneratedTheme{}, false
	}
	if obj.Theme == "" {
		obj.Theme = obj.Name
	}
	g := domain.GeneratedTheme{Text: strings.ToLower(strings.TrimSpace(obj.Theme))}
	if g.Text == "" {
		return g, false
	}
	if obj.Confidence != nil {
		g.Confidence = min(max(*obj.Confidence, 0), 1)
		g.HasConfidence = true
	}
	return g, true
}

func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line, including any language tag.
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
