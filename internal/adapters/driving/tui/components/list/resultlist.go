// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Row is one line of a result list: a theme of a company, or a stock
// carrying a theme.
type Row struct {
	// Key is the theme name or ticker.
	Key string

	// Label is shown next to the key, e.g. the category or company name.
	Label string

	// Confidence is rendered right-aligned and coloured.
	Confidence float64

	// Detail is shown dimmed under the row, e.g. the source and evidence.
	Detail string
}

// ThemeRows converts stored themes of one company into rows.
func ThemeRows(themes []domain.StockTheme) []Row {
	rows := make([]Row, len(themes))
	for i, t := range themes {
		detail := string(t.Source)
		if t.Evidence != "" {
			detail += ": " + t.Evidence
		}
		rows[i] = Row{Key: t.Theme, Label: string(t.Category), Confidence: t.Confidence, Detail: detail}
	}
	return rows
}

// StockRows converts theme matches into rows.
func StockRows(stocks []domain.StockMatch) []Row {
	rows := make([]Row, len(stocks))
	for i, s := range stocks {
		rows[i] = Row{Key: s.Ticker, Label: s.Name, Confidence: s.Confidence, Detail: string(s.Source)}
	}
	return rows
}

// ResultList displays rows in a navigable list.
type ResultList struct {
	rows     []Row
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.rows) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.rows)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.rows))), "")

	// Each row takes two lines.
	visibleCount := max((r.height-4)/2, 1)

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.rows))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i, r.rows[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *ResultList) renderRow(index int, row Row) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	keyWidth := max(r.width/3, 12)
	labelWidth := max(r.width-keyWidth-16, 10)
	key := truncate(row.Key, keyWidth)
	label := truncate(row.Label, labelWidth)
	score := fmt.Sprintf("%.2f", row.Confidence)

	var line string
	if index == r.selected {
		line = r.styles.Selected.Render(fmt.Sprintf("%s%-*s %-*s %s", indicator, keyWidth, key, labelWidth, label, score))
	} else {
		line = r.styles.Normal.Render(fmt.Sprintf("%s%-*s ", indicator, keyWidth, key)) +
			r.styles.Muted.Render(fmt.Sprintf("%-*s ", labelWidth, label)) +
			r.styles.ConfidenceStyle(row.Confidence).Render(score)
	}

	detail := truncate(row.Detail, max(r.width-6, 20))
	return line + "\n" + r.styles.Muted.Render("    "+detail)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// SetRows replaces the rows and resets the selection.
func (r *ResultList) SetRows(rows []Row) {
	r.rows = rows
	r.selected = 0
}

// Rows returns the current rows.
func (r *ResultList) Rows() []Row {
	return r.rows
}

// Selected returns the index of the selected row.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedRow returns the currently selected row, or nil if none.
func (r *ResultList) SelectedRow() *Row {
	if len(r.rows) == 0 || r.selected < 0 || r.selected >= len(r.rows) {
		return nil
	}
	return &r.rows[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.rows)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of rows.
func (r *ResultList) Count() int {
	return len(r.rows)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.rows) == 0
}
