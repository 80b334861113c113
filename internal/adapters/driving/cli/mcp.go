package cli

import (
	"errors"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored themes to MCP clients",
	Long: `Serve stored themes to AI assistants over the Model Context Protocol.

Tools:      lookup_themes, find_stocks, extract_themes, theme_stats
Resources:  themes://taxonomy, themes://stocks/{ticker}

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch:

  {"mcpServers": {"stockthemes": {"command": "stockthemes", "args": ["mcp", "serve"]}}}

With --port it serves streamable HTTP, e.g. for the MCP Inspector:

  stockthemes mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "Serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "Interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	server, err := mcp.NewServer(&mcp.Ports{Query: queryService, Extraction: extractionService})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
