package themes

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/stockthemes/internal/logger"
)

// DefaultEncoding is used when no model-specific encoding is known.
const DefaultEncoding = "cl100k_base"

// TokenCounter measures text in model tokens.
type TokenCounter interface {
	Count(text string) int
}

// ApproxCounter estimates four tokens per three words, rounded up.
type ApproxCounter struct{}

// Count returns the estimate.
func (ApproxCounter) Count(text string) int {
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}

// TiktokenCounter counts with a BPE encoding, loaded on first use. When the
// encoding cannot be loaded it falls back to ApproxCounter.
type TiktokenCounter struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a counter for model. An empty or unknown model
// uses DefaultEncoding.
func NewTiktokenCounter(model string) *TiktokenCounter {
	return &TiktokenCounter{model: model}
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	c.once.Do(c.init)
	if c.enc == nil {
		return ApproxCounter{}.Count(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *TiktokenCounter) init() {
	if c.model != "" {
		if enc, err := tiktoken.EncodingForModel(c.model); err == nil {
			c.enc = enc
			return
		}
	}
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		logger.Debug("llm: token encoding unavailable, estimating from words: %v", err)
		return
	}
	c.enc = enc
}
