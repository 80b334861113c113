package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

var (
	batchFile         string
	batchSkipExisting string
	batchConcurrency  int
	batchMaxFailures  int
	batchNoTUI        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [tickers...]",
	Short: "Extract themes for many companies",
	Long: `Run extraction across many tickers with bounded concurrency.

Tickers come from the arguments, from --file (one per line or comma
separated, '#' starts a comment) or, when neither is given, from every
ticker already in the store.

Once more than --max-failures tickers have failed, no further tickers are
started; in-flight work is cancelled and counted as skipped.

On a terminal a live progress view is shown; otherwise one line is printed
per finished ticker.`,
	Example: `  stockthemes batch AAPL MSFT NVDA
  stockthemes batch --file sp500.txt --concurrency 8 --max-failures 20
  stockthemes batch --skip-existing 7d`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "read tickers from a file")
	batchCmd.Flags().StringVar(&batchSkipExisting, "skip-existing", "",
		"skip tickers refreshed since a date (2006-01-02) or within a duration (72h, 7d)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "tickers processed at once (default from settings)")
	batchCmd.Flags().IntVar(&batchMaxFailures, "max-failures", -1, "stop after this many failures, 0 disables (default from settings)")
	batchCmd.Flags().BoolVar(&batchNoTUI, "no-tui", false, "print plain progress lines even on a terminal")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchService == nil {
		return errors.New("batch service not configured")
	}
	ctx := cmd.Context()

	tickers, err := collectTickers(cmd, args)
	if err != nil {
		return err
	}

	if batchSkipExisting != "" {
		since, err := parseSince(batchSkipExisting, time.Now())
		if err != nil {
			return err
		}
		if tickerCatalog == nil {
			return errors.New("ticker catalog not configured")
		}
		fresh, err := tickerCatalog.RefreshedSince(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to read refreshed tickers: %w", err)
		}
		before := len(tickers)
		tickers = skipTickers(tickers, fresh)
		cmd.Printf("Skipping %d tickers refreshed since %s\n", before-len(tickers), since.Format("2006-01-02 15:04"))
	}

	if len(tickers) == 0 {
		cmd.Println("No tickers to process.")
		return nil
	}

	opts := batchOptions()
	var report *domain.BatchReport
	if !batchNoTUI && isTerminal(cmd.OutOrStdout()) {
		report, err = tui.RunBatch(ctx, batchService, tickers, opts, cmd.OutOrStdout())
	} else {
		report, err = batchService.Run(ctx, tickers, opts, func(p domain.BatchProgress) {
			printBatchProgress(cmd, p)
		})
	}

	if report != nil {
		printBatchReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("batch stopped: %w", err)
	}
	return nil
}

// collectTickers resolves the ticker list from args, --file or the store.
func collectTickers(cmd *cobra.Command, args []string) ([]string, error) {
	raw := append([]string(nil), args...)

	if batchFile != "" {
		f, err := os.Open(batchFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open ticker file: %w", err)
		}
		defer f.Close()
		fromFile, err := readTickers(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read ticker file: %w", err)
		}
		raw = append(raw, fromFile...)
	}

	if len(raw) == 0 && batchFile == "" {
		if tickerCatalog == nil {
			return nil, errors.New("no tickers given and ticker catalog not configured")
		}
		stored, err := tickerCatalog.Tickers(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("failed to list stored tickers: %w", err)
		}
		raw = stored
	}

	return domain.NormalizeTickers(raw)
}

// readTickers reads tickers separated by newlines, commas or spaces.
func readTickers(r io.Reader) ([]string, error) {
	var tickers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == ';'
		}) {
			tickers = append(tickers, field)
		}
	}
	return tickers, scanner.Err()
}

// parseSince accepts a date, an RFC 3339 timestamp, a Go duration or a
// number of days such as "7d".
func parseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		var n int
		if _, err := fmt.Sscanf(days, "%d", &n); err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --skip-existing value %q: use a date (2006-01-02) or a duration (72h, 7d)", value)
}

// skipTickers removes tickers present in skip, preserving order.
func skipTickers(tickers, skip []string) []string {
	drop := make(map[string]struct{}, len(skip))
	for _, t := range skip {
		drop[t] = struct{}{}
	}
	out := tickers[:0:0]
	for _, t := range tickers {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// batchOptions merges flags over the configured batch settings.
func batchOptions() domain.BatchOptions {
	defaults := domain.DefaultAppSettings().Batch
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			defaults = settings.Batch
		}
	}

	opts := domain.BatchOptions{
		Concurrency:         defaults.Concurrency,
		MaxFailures:         defaults.MaxFailures,
		CountEmptyAsFailure: defaults.CountEmptyAsFailure,
	}
	if batchConcurrency > 0 {
		opts.Concurrency = batchConcurrency
	}
	if batchMaxFailures >= 0 {
		opts.MaxFailures = batchMaxFailures
	}
	return opts
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printBatchProgress(cmd *cobra.Command, p domain.BatchProgress) {
	prefix := fmt.Sprintf("[%d/%d] %s", p.Completed, p.Total, p.Ticker)
	switch {
	case p.Err != nil:
		cmd.Printf("%s: FAILED: %v\n", prefix, p.Err)
	case p.Themes == 0:
		cmd.Printf("%s: no themes\n", prefix)
	default:
		cmd.Printf("%s: %d themes\n", prefix, p.Themes)
	}
}

func printBatchReport(cmd *cobra.Command, r *domain.BatchReport) {
	cmd.Println()
	cmd.Printf("Processed %d tickers in %s: %d succeeded, %d empty, %d failed, %d skipped\n",
		r.Total, r.Duration.Round(time.Second), r.Succeeded, r.Empty, r.Failed, r.Skipped)
	if r.Stopped {
		cmd.Println("Stopped early: failure budget exceeded.")
	}
	if len(r.Failures) == 0 {
		return
	}

	tickers := make([]string, 0, len(r.Failures))
	for t := range r.Failures {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	cmd.Println("Failures:")
	for _, t := range tickers {
		cmd.Printf("  %s: %s\n", t, r.Failures[t])
	}
}
