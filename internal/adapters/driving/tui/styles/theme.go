// Package styles holds the lipgloss styles shared by the TUI and the
// table output of the CLI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours styles are derived from.
type Palette struct {
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Good      lipgloss.Color
	Caution   lipgloss.Color
	Bad       lipgloss.Color
	Frame     lipgloss.Color
	BarFill   lipgloss.Color
}

// DefaultPalette is teal and amber on a dark terminal.
func DefaultPalette() Palette {
	return Palette{
		Accent:    "#2DD4BF",
		Highlight: "#FBBF24",
		Text:      "#E5E7EB",
		Dim:       "#6B7280",
		Good:      "#4ADE80",
		Caution:   "#FACC15",
		Bad:       "#F87171",
		Frame:     "#374151",
		BarFill:   "#0B1220",
	}
}

// Confidence bands for ConfidenceStyle.
const (
	HighConfidence   = 0.7
	MediumConfidence = 0.45
)

type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style
	Ticker   lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	InputField  lipgloss.Style
	StatusBar   lipgloss.Style
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style

	high, medium, low lipgloss.Style
}

// NewStyles derives every style from p.
func NewStyles(p Palette) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	bold := func(c lipgloss.Color) lipgloss.Style { return fg(c).Bold(true) }

	return &Styles{
		Title:    bold(p.Accent),
		Subtitle: bold(p.Highlight),
		Normal:   fg(p.Text),
		Muted:    fg(p.Dim),
		Help:     fg(p.Dim),
		Selected: bold(p.Text).Background(p.Accent),
		Ticker:   bold(p.Highlight),

		Success: fg(p.Good),
		Warning: fg(p.Caution),
		Error:   fg(p.Bad),

		InputField:  lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.Frame).Padding(0, 1),
		StatusBar:   fg(p.Dim).Background(p.BarFill).Padding(0, 1),
		TableHeader: bold(p.Accent).Padding(0, 1),
		TableCell:   fg(p.Text).Padding(0, 1),

		high:   bold(p.Good),
		medium: fg(p.Caution),
		low:    fg(p.Dim),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// ConfidenceStyle colours a confidence score by band.
func (s *Styles) ConfidenceStyle(c float64) lipgloss.Style {
	switch {
	case c >= HighConfidence:
		return s.high
	case c >= MediumConfidence:
		return s.medium
	}
	return s.low
}
