package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/table"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

var (
	queryJSON          bool
	queryMinConfidence float64
	findLimit          int
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [ticker]",
	Short: "Show the stored themes of a company",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

var findCmd = &cobra.Command{
	Use:   "find [theme]",
	Short: "List stocks carrying a theme",
	Long: `List stored stocks associated with a theme.

The theme may be a canonical name, an alias or a synonym, e.g. "ai",
"machine learning" and "artificial intelligence" all find the same stocks.`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store counts and the theme distribution",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the canonical theme taxonomy",
	Args:  cobra.NoArgs,
	RunE:  runThemes,
}

func init() {
	for _, c := range []*cobra.Command{lookupCmd, findCmd, statsCmd, themesCmd} {
		c.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
	lookupCmd.Flags().Float64Var(&queryMinConfidence, "min-confidence", 0, "hide themes below this confidence")
	findCmd.Flags().Float64Var(&queryMinConfidence, "min-confidence", 0, "hide stocks below this confidence")
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 50, "maximum number of stocks")
}

func runLookup(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	company, err := queryService.Lookup(cmd.Context(), args[0], queryMinConfidence)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s has no stored themes, run 'stockthemes extract %s' first", args[0], args[0])
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, company)
	}

	p := company.Profile
	cmd.Printf("%s  %s\n", p.Ticker, p.Name)
	if p.Sector != "" || p.Industry != "" {
		cmd.Printf("%s / %s\n", p.Sector, p.Industry)
	}
	cmd.Println()
	if len(company.Themes) == 0 {
		cmd.Println("No themes stored.")
		return nil
	}
	cmd.Println(table.CompanyThemes(nil, company))
	return nil
}

func runFind(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	stocks, err := queryService.FindStocks(cmd.Context(), args[0], queryMinConfidence, findLimit)
	if err != nil {
		return fmt.Errorf("find failed: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, stocks)
	}
	if len(stocks) == 0 {
		cmd.Printf("No stocks found for %q.\n", args[0])
		return nil
	}
	cmd.Println(table.StockMatches(nil, stocks))
	cmd.Printf("%d stocks\n", len(stocks))
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	stats, err := queryService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	dist, err := queryService.Distribution(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read distribution: %w", err)
	}

	if queryJSON {
		return printJSON(cmd, struct {
			Stats        domain.StoreStats   `json:"stats"`
			Distribution []domain.ThemeCount `json:"distribution"`
		}{stats, dist})
	}

	cmd.Println(table.Stats(nil, stats))
	if len(dist) > 0 {
		cmd.Println()
		cmd.Println(table.Distribution(nil, dist))
	}
	return nil
}

func runThemes(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	themes := queryService.Taxonomy()
	if queryJSON {
		type themeJSON struct {
			Name        string          `json:"name"`
			Category    domain.Category `json:"category"`
			Description string          `json:"description"`
			Synonyms    []string        `json:"synonyms,omitempty"`
		}
		out := make([]themeJSON, len(themes))
		for i, t := range themes {
			out[i] = themeJSON{Name: t.Name, Category: t.Category, Description: t.Description, Synonyms: t.Synonyms}
		}
		return printJSON(cmd, out)
	}

	cmd.Println(table.Taxonomy(nil, themes))
	cmd.Printf("%d themes\n", len(themes))
	return nil
}
