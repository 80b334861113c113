package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const defaultFindLimit = 25

// LookupInput is the input schema for the lookup_themes tool.
type LookupInput struct {
	Ticker        string  `json:"ticker" jsonschema:"stock ticker symbol, e.g. AAPL"`
	MinConfidence float64 `json:"min_confidence,omitempty" jsonschema:"drop themes below this confidence (0-1)"`
}

// LookupOutput is the output schema for the lookup_themes tool.
type LookupOutput struct {
	Found    bool          `json:"found"`
	Ticker   string        `json:"ticker"`
	Name     string        `json:"name,omitempty"`
	Sector   string        `json:"sector,omitempty"`
	Industry string        `json:"industry,omitempty"`
	Themes   []ThemeOutput `json:"themes"`
}

// ThemeOutput is one theme of a company.
type ThemeOutput struct {
	Theme      string  `json:"theme"`
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Evidence   string  `json:"evidence,omitempty"`
}

// FindInput is the input schema for the find_stocks tool.
type FindInput struct {
	Theme         string  `json:"theme" jsonschema:"theme name or alias, e.g. ai or electric vehicles"`
	MinConfidence float64 `json:"min_confidence,omitempty" jsonschema:"drop stocks below this confidence (0-1)"`
	Limit         int     `json:"limit,omitempty" jsonschema:"maximum number of stocks to return (default 25)"`
}

// FindOutput is the output schema for the find_stocks tool.
type FindOutput struct {
	Stocks []domain.StockMatch `json:"stocks"`
	Count  int                 `json:"count"`
}

// ExtractInput is the input schema for the extract_themes tool.
type ExtractInput struct {
	Ticker string `json:"ticker" jsonschema:"stock ticker symbol to analyse"`
}

// ExtractOutput is the output schema for the extract_themes tool.
type ExtractOutput struct {
	Ticker      string        `json:"ticker"`
	CompanyName string        `json:"company_name"`
	Themes      []ThemeOutput `json:"themes"`
	SourcesUsed []string      `json:"sources_used"`
	Unavailable []string      `json:"unavailable,omitempty"`
}

// StatsInput is the empty input of the theme_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the theme_stats tool.
type StatsOutput struct {
	Stats        domain.StoreStats   `json:"stats"`
	Distribution []domain.ThemeCount `json:"distribution"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_themes",
		Description: "Get the stored investment themes of a stock",
	}, s.handleLookup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_stocks",
		Description: "Find stocks associated with an investment theme",
	}, s.handleFind)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_themes",
		Description: "Run theme extraction for a stock and store the result",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "theme_stats",
		Description: "Report stored stock counts and the theme distribution",
	}, s.handleStats)
}

// handleLookup handles the lookup_themes tool invocation. An unknown
// ticker is a normal answer, not an error.
func (s *Server) handleLookup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, LookupOutput, error) {
	output := LookupOutput{Ticker: input.Ticker, Themes: []ThemeOutput{}}

	company, err := s.ports.Query.Lookup(ctx, input.Ticker, input.MinConfidence)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, output, nil
	}
	if err != nil {
		return nil, LookupOutput{}, err
	}

	output.Found = true
	output.Ticker = company.Profile.Ticker
	output.Name = company.Profile.Name
	output.Sector = company.Profile.Sector
	output.Industry = company.Profile.Industry
	for _, t := range company.Themes {
		output.Themes = append(output.Themes, ThemeOutput{
			Theme:      t.Theme,
			Category:   string(t.Category),
			Confidence: t.Confidence,
			Source:     string(t.Source),
			Evidence:   t.Evidence,
		})
	}
	return nil, output, nil
}

// handleFind handles the find_stocks tool invocation.
func (s *Server) handleFind(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindInput,
) (*mcp.CallToolResult, FindOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}

	stocks, err := s.ports.Query.FindStocks(ctx, input.Theme, input.MinConfidence, limit)
	if err != nil {
		return nil, FindOutput{}, err
	}
	if stocks == nil {
		stocks = []domain.StockMatch{}
	}
	return nil, FindOutput{Stocks: stocks, Count: len(stocks)}, nil
}

// handleExtract handles the extract_themes tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if s.ports.Extraction == nil {
		return nil, ExtractOutput{}, ErrExtractionDisabled
	}

	result, err := s.ports.Extraction.Extract(ctx, input.Ticker)
	if err != nil {
		return nil, ExtractOutput{}, err
	}

	output := ExtractOutput{
		Ticker:      result.Ticker,
		CompanyName: result.CompanyName,
		Themes:      make([]ThemeOutput, 0, len(result.Themes)),
		SourcesUsed: make([]string, 0, len(result.Metadata.SourcesUsed)),
		Unavailable: result.Metadata.Unavailable,
	}
	for _, t := range result.Themes {
		output.Themes = append(output.Themes, ThemeOutput{
			Theme:      t.Theme,
			Category:   string(t.Category),
			Confidence: t.Confidence,
			Source:     string(t.Source),
			Evidence:   t.Evidence,
		})
	}
	for _, src := range result.Metadata.SourcesUsed {
		output.SourcesUsed = append(output.SourcesUsed, string(src))
	}
	return nil, output, nil
}

// handleStats handles the theme_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Query.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	dist, err := s.ports.Query.Distribution(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	if dist == nil {
		dist = []domain.ThemeCount{}
	}
	return nil, StatsOutput{Stats: stats, Distribution: dist}, nil
}
