package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestThemeRows(t *testing.T) {
	rows := ThemeRows([]domain.StockTheme{
		{Theme: "electric vehicles", Category: domain.CategoryConsumer, Confidence: 0.8, Source: domain.SourcePattern, Evidence: "EV platform"},
		{Theme: "batteries", Confidence: 0.5, Source: domain.SourceNews},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Key: "electric vehicles", Label: "consumer", Confidence: 0.8, Detail: "pattern: EV platform"}, rows[0])
	assert.Equal(t, "news", rows[1].Detail)
}

func TestStockRows(t *testing.T) {
	rows := StockRows([]domain.StockMatch{{Ticker: "TSLA", Name: "Tesla", Confidence: 0.9, Source: domain.SourceSemantic}})
	assert.Equal(t, []Row{{Key: "TSLA", Label: "Tesla", Confidence: 0.9, Detail: "semantic"}}, rows)
}

func TestResultList(t *testing.T) {
	r := NewResultList(nil)
	assert.True(t, r.IsEmpty())
	assert.Nil(t, r.SelectedRow())
	assert.Equal(t, "No results", stripANSI(r.View()))

	r.SetRows([]Row{{Key: "a"}, {Key: "b"}, {Key: "c"}})
	assert.Equal(t, 3, r.Count())

	r.MoveUp()
	assert.Equal(t, 0, r.Selected())
	r.MoveDown()
	r.MoveDown()
	r.MoveDown()
	assert.Equal(t, 2, r.Selected())
	assert.Equal(t, "c", r.SelectedRow().Key)

	r.SetRows([]Row{{Key: "x"}})
	assert.Equal(t, 0, r.Selected())
	assert.Contains(t, r.View(), "Results (1)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

// stripANSI drops escape sequences so assertions see plain text.
func stripANSI(s string) string {
	out := make([]rune, 0, len(s))
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			out = append(out, r)
		}
	}
	return string(out)
}
