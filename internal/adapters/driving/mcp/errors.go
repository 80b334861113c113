// Package mcp provides an MCP (Model Context Protocol) server adapter for stockthemes.
// It lets AI assistants look up stored themes, find stocks by theme and run extractions.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// ErrExtractionDisabled is returned by extract_themes when no extraction service is wired.
var ErrExtractionDisabled = errors.New("mcp: extraction is not available")
