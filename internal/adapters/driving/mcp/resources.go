package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for stockthemes resources.
	uriScheme = "themes://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "taxonomy",
		Name:        "taxonomy",
		Description: "Canonical investment themes with categories and synonyms",
		MIMEType:    "application/json",
	}, s.handleTaxonomyResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "stocks/{ticker}",
		Name:        "stock-themes",
		Description: "Stored profile and themes of a stock",
		MIMEType:    "application/json",
	}, s.handleStockResource)
}

// handleTaxonomyResource returns the taxonomy in catalogue order.
func (s *Server) handleTaxonomyResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type themeInfo struct {
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		Description string   `json:"description,omitempty"`
		Synonyms    []string `json:"synonyms,omitempty"`
	}

	themes := s.ports.Query.Taxonomy()
	infos := make([]themeInfo, len(themes))
	for i, t := range themes {
		infos[i] = themeInfo{
			Name:        t.Name,
			Category:    string(t.Category),
			Description: t.Description,
			Synonyms:    t.Synonyms,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleStockResource returns the stored themes of one ticker.
func (s *Server) handleStockResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ticker := extractTicker(req.Params.URI)
	if ticker == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	company, err := s.ports.Query.Lookup(ctx, ticker, 0)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTicker) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", ticker, err)
	}

	return jsonResource(req.Params.URI, company)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTicker extracts the ticker from a URI like themes://stocks/{ticker}.
func extractTicker(uri string) string {
	const prefix = uriScheme + "stocks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	ticker := strings.TrimPrefix(uri, prefix)
	if strings.Contains(ticker, "/") {
		return ""
	}
	return ticker
}
