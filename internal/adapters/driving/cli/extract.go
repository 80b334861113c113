package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/table"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract [ticker]",
	Short: "Extract investment themes for one company",
	Long: `Run the full extraction pipeline for a single ticker.

The company profile and the latest SEC filing are resolved, every enabled
strategy proposes candidate themes and the ensemble merger ranks them.
The result is stored and printed. Collaborators that supplied no data are
listed as unavailable; they never fail the run.`,
	Example: `  stockthemes extract NVDA
  stockthemes extract BRK.B --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	result, err := extractionService.Extract(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if extractJSON {
		return printJSON(cmd, result)
	}
	printThemeResult(cmd, result)
	return nil
}

func printThemeResult(cmd *cobra.Command, result *domain.ThemeResult) {
	cmd.Printf("%s  %s\n\n", result.Ticker, result.CompanyName)

	if len(result.Themes) == 0 {
		cmd.Println("No themes found.")
	} else {
		cmd.Println(table.ThemeResult(nil, result))
	}

	meta := result.Metadata
	cmd.Println()
	cmd.Printf("Sources used: %s\n", joinSources(meta.SourcesUsed))
	cmd.Printf("Candidates:   %d\n", meta.TotalCandidates)
	if meta.ChunksTotal > 0 {
		cmd.Printf("Chunks:       %d relevant of %d (%s)\n", meta.ChunksRelevant, meta.ChunksTotal, meta.FilingOrigin)
	}
	for _, u := range meta.Unavailable {
		cmd.Printf("Unavailable:  %s\n", u)
	}
}
