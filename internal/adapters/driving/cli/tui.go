package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

var tuiMinConfidence float64

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive browser over stored themes.

Look up the themes of a ticker, list the stocks carrying a theme and
inspect store statistics with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Run query / open stock
  n        - New query
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var tuiWithScheduler bool

func init() {
	tuiCmd.Flags().Float64Var(&tuiMinConfidence, "min-confidence", 0, "hide themes below this confidence")
	tuiCmd.Flags().BoolVar(&tuiWithScheduler, "with-scheduler", false, "run scheduled tasks in the background")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	// The TUI is long-running, so it may host background tasks.
	if tuiWithScheduler && newScheduler != nil {
		cfg, err := loadSchedulerConfig()
		if err != nil {
			return err
		}
		s := newScheduler(cfg)
		schedulerCtx, schedulerCancel := context.WithCancel(cmd.Context())
		defer schedulerCancel()

		go func() {
			if err := s.Start(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()

		defer func() {
			if err := s.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
	}

	app, err := tui.NewApp(tui.NewPorts(queryService, batchService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	app.SetMinConfidence(tuiMinConfidence)

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
