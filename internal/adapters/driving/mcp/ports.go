package mcp

import (
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

// Ports are the services the MCP tools call into.
type Ports struct {
	Query driving.QueryService

	// Extraction backs extract_themes. Without it the tool reports
	// ErrExtractionDisabled.
	Extraction driving.ExtractionService
}

// Validate requires the query service.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
