// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"errors"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// ErrNoQueryService is reported by views started without a query service.
var ErrNoQueryService = errors.New("query service is required")

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewLookup looks up the stored themes of a ticker.
	ViewLookup
	// ViewFind lists stocks carrying a theme.
	ViewFind
	// ViewStats shows store counts and the theme distribution.
	ViewStats
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewLookup:
		return "lookup"
	case ViewFind:
		return "find"
	case ViewStats:
		return "stats"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// LookupRequested asks the lookup view to show a ticker, e.g. after
// selecting a stock in a theme result list.
type LookupRequested struct {
	Ticker string
}

// LookupCompleted carries a stored company back to the model.
type LookupCompleted struct {
	Company *domain.CompanyThemes
	Err     error
}

// FindCompleted carries stocks matching a theme back to the model.
type FindCompleted struct {
	Theme  string
	Stocks []domain.StockMatch
	Err    error
}

// StatsLoaded carries store counts and the theme distribution.
type StatsLoaded struct {
	Stats        domain.StoreStats
	Distribution []domain.ThemeCount
	Err          error
}

// BatchProgressed is sent once per finished ticker of a batch.
type BatchProgressed struct {
	Progress domain.BatchProgress
}

// BatchFinished is sent when the batch returns.
type BatchFinished struct {
	Report *domain.BatchReport
	Err    error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
