// Package strategy holds the independent theme extraction strategies.
//
// Every strategy proposes theme candidates from its own input and never sees
// another strategy's output. Strategies do not return errors: a collaborator
// that has no data produces an empty result and is noted on the Inputs.
package strategy

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Strategy proposes theme candidates for one company.
type Strategy interface {
	// Source identifies the strategy in results.
	Source() domain.Source

	// Extract returns candidates. It must be safe to call concurrently
	// with other strategies on the same Inputs.
	Extract(ctx context.Context, in Inputs) []domain.ThemeCandidate
}

// Inputs is the read-only context shared by all strategies for one company.
type Inputs struct {
	Ticker  string
	Profile domain.CompanyProfile

	// Filing is the resolved disclosure, or nil when none was available.
	Filing *domain.SourceDocument

	// Chunks are the filing chunks that passed the semantic filter.
	Chunks []domain.FilteredChunk

	notes *Notes
}

// NewInputs builds Inputs that record unavailability into notes.
// notes may be nil.
func NewInputs(ticker string, profile domain.CompanyProfile, filing *domain.SourceDocument, chunks []domain.FilteredChunk, notes *Notes) Inputs {
	return Inputs{Ticker: ticker, Profile: profile, Filing: filing, Chunks: chunks, notes: notes}
}

// CompanyName returns the profile name, falling back to the ticker.
func (in Inputs) CompanyName() string {
	if name := strings.TrimSpace(in.Profile.Name); name != "" {
		return name
	}
	return in.Ticker
}

// HasCompanyName reports whether a real company name is known.
func (in Inputs) HasCompanyName() bool {
	return strings.TrimSpace(in.Profile.Name) != ""
}

// BusinessText joins the filing text and the profile summary.
func (in Inputs) BusinessText() string {
	var parts []string
	if in.Filing != nil && strings.TrimSpace(in.Filing.Text) != "" {
		parts = append(parts, in.Filing.Text)
	}
	if s := strings.TrimSpace(in.Profile.BusinessSummary); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Note records that a collaborator supplied no data.
func (in Inputs) Note(u domain.Unavailable) {
	if in.notes != nil {
		in.notes.Add(u)
	}
}

// Notes collects Unavailable values from concurrent strategies.
type Notes struct {
	mu    sync.Mutex
	items []domain.Unavailable
}

// Add appends u.
func (n *Notes) Add(u domain.Unavailable) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, u)
}

// Items returns a copy of the collected values.
func (n *Notes) Items() []domain.Unavailable {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Unavailable(nil), n.items...)
}

// collector keeps the best candidate per theme in first-seen order.
type collector struct {
	index map[string]int
	out   []domain.ThemeCandidate
}

func newCollector() *collector {
	return &collector{index: make(map[string]int)}
}

// add keeps the higher confidence when a theme repeats.
func (c *collector) add(cand domain.ThemeCandidate) {
	if i, ok := c.index[cand.Theme]; ok {
		if cand.Confidence > c.out[i].Confidence {
			c.out[i] = cand
		}
		return
	}
	c.index[cand.Theme] = len(c.out)
	c.out = append(c.out, cand)
}

// addFirst keeps the first candidate when a theme repeats.
func (c *collector) addFirst(cand domain.ThemeCandidate) {
	if _, ok := c.index[cand.Theme]; ok {
		return
	}
	c.index[cand.Theme] = len(c.out)
	c.out = append(c.out, cand)
}

func (c *collector) candidates() []domain.ThemeCandidate {
	return c.out
}

// round3 rounds to three decimals so scores are stable across platforms.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// snippet returns text around [start, end) widened by pad bytes on each side,
// aligned to rune boundaries and trimmed.
func snippet(text string, start, end, pad int) string {
	from := max(0, start-pad)
	to := min(len(text), end+pad)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return strings.Join(strings.Fields(text[from:to]), " ")
}
