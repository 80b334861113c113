// Package table renders theme results as lipgloss tables, shared by the
// TUI views and the plain CLI output.
package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// maxEvidence truncates evidence snippets in table cells.
const maxEvidence = 60

func newTable(s *styles.Styles, headers ...string) *table.Table {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Help).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			return s.TableCell
		})
}

func confidence(c float64) string {
	return fmt.Sprintf("%.2f", c)
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// ThemeResult renders a fresh extraction.
func ThemeResult(s *styles.Styles, r *domain.ThemeResult) string {
	if r == nil {
		return ""
	}
	t := newTable(s, "#", "THEME", "CATEGORY", "CONF", "SOURCE", "EVIDENCE")
	for i, th := range r.Themes {
		t.Row(fmt.Sprint(i+1), th.Theme, string(th.Category), confidence(th.Confidence), string(th.Source), clip(th.Evidence, maxEvidence))
	}
	return t.Render()
}

// CompanyThemes renders the stored themes of one company.
func CompanyThemes(s *styles.Styles, c *domain.CompanyThemes) string {
	if c == nil {
		return ""
	}
	t := newTable(s, "THEME", "CATEGORY", "CONF", "SOURCE", "UPDATED")
	for _, th := range c.Themes {
		updated := ""
		if !th.UpdatedAt.IsZero() {
			updated = th.UpdatedAt.Format("2006-01-02")
		}
		t.Row(th.Theme, string(th.Category), confidence(th.Confidence), string(th.Source), updated)
	}
	return t.Render()
}

// StockMatches renders the stocks carrying a theme.
func StockMatches(s *styles.Styles, stocks []domain.StockMatch) string {
	t := newTable(s, "TICKER", "NAME", "CONF", "SOURCE")
	for _, m := range stocks {
		t.Row(m.Ticker, m.Name, confidence(m.Confidence), string(m.Source))
	}
	return t.Render()
}

// Distribution renders stock counts per theme.
func Distribution(s *styles.Styles, counts []domain.ThemeCount) string {
	t := newTable(s, "THEME", "CATEGORY", "STOCKS", "AVG CONF")
	for _, c := range counts {
		t.Row(c.Theme, string(c.Category), fmt.Sprint(c.StockCount), confidence(c.AvgConfidence))
	}
	return t.Render()
}

// Taxonomy renders the canonical themes.
func Taxonomy(s *styles.Styles, themes []domain.TaxonomyTheme) string {
	t := newTable(s, "THEME", "CATEGORY", "SYNONYMS")
	for _, th := range themes {
		t.Row(th.Name, string(th.Category), clip(strings.Join(th.Synonyms, ", "), maxEvidence))
	}
	return t.Render()
}

// Stats renders store row counts.
func Stats(s *styles.Styles, st domain.StoreStats) string {
	t := newTable(s, "STOCKS", "THEMES", "ASSOCIATIONS", "SOCIAL MESSAGES")
	t.Row(fmt.Sprint(st.Stocks), fmt.Sprint(st.Themes), fmt.Sprint(st.Associations), fmt.Sprint(st.SocialMessages))
	return t.Render()
}

// Tasks renders scheduler task state. The last column summarises the
// newest recorded run.
func Tasks(s *styles.Styles, status []domain.TaskStatus) string {
	t := newTable(s, "TASK", "SCHEDULE", "ENABLED", "LAST RUN", "NEXT RUN", "LAST RESULT")
	for _, st := range status {
		last := "never run"
		if len(st.Recent) > 0 {
			r := st.Recent[0]
			last = fmt.Sprintf("ok, %d items", r.ItemsProcessed)
			if !r.Success {
				last = "failed: " + clip(r.Error, maxEvidence)
			}
		}
		t.Row(st.Task.ID, st.Task.Schedule, fmt.Sprint(st.Task.Enabled), stamp(st.Task.LastRun), stamp(st.Task.NextRun), last)
	}
	return t.Render()
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
