// Package tui provides the interactive terminal interface: a browser over
// stored themes and a live view of batch extractions.
package tui

import (
	"errors"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
)

var (
	ErrInvalidPorts        = errors.New("tui: no ports given")
	ErrMissingQueryService = errors.New("tui: query service is required")
	ErrMissingBatchService = errors.New("tui: batch service is required")
)

// Ports holds the services the views call. Batch is only needed by the
// batch view.
type Ports struct {
	Query driving.QueryService
	Batch driving.BatchService
}

func NewPorts(query driving.QueryService, batch driving.BatchService) *Ports {
	return &Ports{Query: query, Batch: batch}
}

// Validate checks what the browser needs to start.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Query == nil:
		return ErrMissingQueryService
	}
	return nil
}
