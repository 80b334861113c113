package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Social message commands",
}

var socialCollectCmd = &cobra.Command{
	Use:   "collect [tickers...]",
	Short: "Collect recent StockTwits messages",
	Long: `Fetch the latest StockTwits messages for each ticker and store them.

Stored messages feed the social strategy on later extraction runs.
Without arguments every stored ticker is collected. Messages already
stored are ignored.`,
	RunE: runSocialCollect,
}

func init() {
	socialCmd.AddCommand(socialCollectCmd)
	rootCmd.AddCommand(socialCmd)
}

func runSocialCollect(cmd *cobra.Command, args []string) error {
	if socialCollector == nil {
		return errors.New("social collector not configured")
	}

	raw := args
	if len(raw) == 0 {
		if tickerCatalog == nil {
			return errors.New("no tickers given and ticker catalog not configured")
		}
		stored, err := tickerCatalog.Tickers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list stored tickers: %w", err)
		}
		raw = stored
	}
	tickers, err := domain.NormalizeTickers(raw)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		cmd.Println("No tickers to collect.")
		return nil
	}

	report, err := socialCollector.Collect(cmd.Context(), tickers)
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}

	cmd.Printf("Collected %d tickers: %d messages fetched, %d new\n", report.Tickers, report.Fetched, report.Inserted)
	if len(report.Failures) > 0 {
		failed := make([]string, 0, len(report.Failures))
		for t := range report.Failures {
			failed = append(failed, t)
		}
		sort.Strings(failed)
		cmd.Println("Failures:")
		for _, t := range failed {
			cmd.Printf("  %s: %s\n", t, report.Failures[t])
		}
	}
	return nil
}
