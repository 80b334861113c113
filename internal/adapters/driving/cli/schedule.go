package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stockthemes/internal/adapters/driving/tui/components/table"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 500 * time.Millisecond

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scheduled background tasks",
	Long: `Run the scheduler in the foreground until interrupted.

Tasks:
  social-collect  collect StockTwits messages for stored tickers (daily)
  theme-refresh   re-extract themes for stored tickers (weekly)

Schedules are five-field cron expressions set with
  stockthemes settings set scheduler.social_collect.schedule "0 6 * * *"

The config file is watched and the scheduler restarts when it changes.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var scheduleRunCmd = &cobra.Command{
	Use:       "run [task]",
	Short:     "Run a scheduled task once, now",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{domain.TaskIDSocialCollect, domain.TaskIDThemeRefresh},
	RunE:      runScheduleNow,
}

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduled tasks and their latest runs",
	Args:  cobra.NoArgs,
	RunE:  runScheduleStatus,
}

var (
	scheduleStatusJSON   bool
	scheduleStatusRecent int
)

func init() {
	scheduleStatusCmd.Flags().BoolVar(&scheduleStatusJSON, "json", false, "Output as JSON")
	scheduleStatusCmd.Flags().IntVar(&scheduleStatusRecent, "recent", 5, "Runs to include per task")
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleStatusCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func loadSchedulerConfig() (domain.SchedulerConfig, error) {
	if settingsService == nil {
		return domain.DefaultSchedulerConfig(), nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.SchedulerConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.Scheduler, nil
}

func runScheduleNow(cmd *cobra.Command, args []string) error {
	if newScheduler == nil {
		return errors.New("scheduler not configured")
	}
	cfg, err := loadSchedulerConfig()
	if err != nil {
		return err
	}

	result, err := newScheduler(cfg).RunNow(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("task %s failed: %w", args[0], err)
	}
	cmd.Printf("%s finished in %s: %d items processed\n",
		result.TaskID, result.Duration().Round(time.Millisecond), result.ItemsProcessed)
	if !result.Success {
		return fmt.Errorf("task %s failed: %s", result.TaskID, result.Error)
	}
	return nil
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	if newScheduler == nil {
		return errors.New("scheduler not configured")
	}
	cfg, err := loadSchedulerConfig()
	if err != nil {
		return err
	}

	status, err := newScheduler(cfg).Status(cmd.Context(), scheduleStatusRecent)
	if err != nil {
		return fmt.Errorf("failed to load task status: %w", err)
	}
	if scheduleStatusJSON {
		return printJSON(cmd, status)
	}
	if len(status) == 0 {
		cmd.Println("No tasks have been scheduled yet.")
		return nil
	}
	if !cfg.Enabled {
		cmd.Println("Scheduler is disabled (scheduler.enabled = false).")
	}
	cmd.Println(table.Tasks(nil, status))
	return nil
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if newScheduler == nil {
		return errors.New("scheduler not configured")
	}
	ctx := cmd.Context()

	var changes <-chan struct{}
	if configPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		defer watcher.Close()
		// Watch the directory: editors replace the file on save.
		if err := watcher.Add(filepath.Dir(configPath)); err != nil {
			logger.Warn("schedule: not watching %s: %v", configPath, err)
		} else {
			changes = watchConfig(ctx, watcher, configPath)
		}
	}

	cmd.Println("Scheduler running, press ctrl+c to stop.")
	return superviseScheduler(ctx, changes)
}

// superviseScheduler runs a scheduler built from the current settings and
// rebuilds it after every config change, until ctx is done.
func superviseScheduler(ctx context.Context, changes <-chan struct{}) error {
	for {
		cfg, err := loadSchedulerConfig()
		if err != nil {
			return err
		}
		s := newScheduler(cfg)

		// Cancelling runCtx stops s even if Start has not begun scheduling.
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- s.Start(runCtx) }()

		select {
		case <-ctx.Done():
			<-done
			cancel()
			return nil

		case err := <-done:
			cancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			// Disabled: idle until the config changes.
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
			}

		case <-changes:
			cancel()
			if err := s.Stop(); err != nil {
				logger.Warn("schedule: stop failed: %v", err)
			}
			<-done
		}
		logger.Info("Config changed, reloading scheduler")
	}
}

// watchConfig emits one value per burst of changes to path.
func watchConfig(ctx context.Context, watcher *fsnotify.Watcher, path string) <-chan struct{} {
	changes := make(chan struct{}, 1)
	go func() {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isConfigChange(ev, path) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDebounce)
				} else {
					timer.Reset(reloadDebounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("schedule: config watch: %v", err)
			}
		}
	}()
	return changes
}

// isConfigChange reports whether ev rewrote the config file.
func isConfigChange(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
