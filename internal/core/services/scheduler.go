package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driving"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results kept per task.
const historyKeep = 100

// TaskFunc runs one scheduled task and reports how many items it processed.
type TaskFunc func(ctx context.Context) (int, error)

// Scheduler runs registered tasks on cron schedules and records every run
// in the scheduler store.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	funcs  map[string]TaskFunc
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopped bool
	cron    *cron.Cron
	stopCh  chan struct{}
	active  map[string]bool
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.SchedulerConfig, store driven.SchedulerStore) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		funcs:  make(map[string]TaskFunc),
		now:    time.Now,
		stopCh: make(chan struct{}),
		active: make(map[string]bool),
	}
}

// Register binds fn to taskID. Registering after Start has no effect until
// the next Start.
func (s *Scheduler) Register(taskID string, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs[taskID] = fn
}

// Start schedules every enabled, registered task and blocks until Stop is
// called or ctx is done. A stopped scheduler does not start again, even when
// Stop came first.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || s.stopped {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("Scheduler disabled")
		return nil
	}

	s.dropStaleTasks(ctx)

	c := cron.New()
	for id := range s.funcs {
		taskCfg := s.config.GetTaskConfig(id)
		if !taskCfg.Enabled {
			continue
		}
		schedule, err := cron.ParseStandard(taskCfg.Schedule)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("%w: task %s schedule %q: %v", domain.ErrConfigInvalid, id, taskCfg.Schedule, err)
		}
		if err := s.ensureTask(ctx, id, taskCfg, schedule); err != nil {
			logger.Warn("scheduler: failed to initialise task %s: %v", id, err)
		}
		c.Schedule(schedule, cron.FuncJob(func() {
			if _, err := s.execute(ctx, id); err != nil {
				logger.Warn("scheduler: %s: %v", id, err)
			}
		}))
		logger.Debug("Scheduled %s at %q", id, taskCfg.Schedule)
	}

	s.cron = c
	s.running = true
	stopCh := s.stopCh
	s.mu.Unlock()

	c.Start()

	select {
	case <-ctx.Done():
		_ = s.Stop()
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop halts scheduling and waits for running tasks to finish. Calling it
// before Start makes Start return at once.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stopCh)
	c := s.cron
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning {
		<-c.Stop().Done()
	}
	return nil
}

// RunNow executes taskID immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	return s.execute(ctx, taskID)
}

// Status lists stored tasks with up to recent of their latest runs.
func (s *Scheduler) Status(ctx context.Context, recent int) ([]domain.TaskStatus, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]domain.TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		st := domain.TaskStatus{Task: task}
		if recent > 0 {
			st.Recent, err = s.store.GetTaskHistory(ctx, task.ID, recent)
			if err != nil {
				return nil, fmt.Errorf("history for %s: %w", task.ID, err)
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// dropStaleTasks removes stored tasks nothing is registered for, such as
// tasks from an older release. Caller holds s.mu.
func (s *Scheduler) dropStaleTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}
	for _, task := range tasks {
		if _, ok := s.funcs[task.ID]; ok {
			continue
		}
		if err := s.store.DeleteTask(ctx, task.ID); err != nil {
			logger.Warn("scheduler: failed to delete stale task %s: %v", task.ID, err)
			continue
		}
		logger.Debug("Removed stale task %s", task.ID)
	}
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id string, cfg domain.TaskConfig, schedule cron.Schedule) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:   id,
			Name: taskName(id),
		}
	}
	task.Schedule = cfg.Schedule
	task.Enabled = cfg.Enabled
	task.NextRun = schedule.Next(now)

	return s.store.SaveTask(ctx, task)
}

// execute runs a task once, updating its state and history. A task never
// runs twice concurrently.
func (s *Scheduler) execute(ctx context.Context, taskID string) (*domain.TaskResult, error) {
	s.mu.Lock()
	fn, ok := s.funcs[taskID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, taskID)
	}
	if s.active[taskID] {
		s.mu.Unlock()
		return nil, fmt.Errorf("task %s already running", taskID)
	}
	s.active[taskID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.active, taskID)
		s.mu.Unlock()
	}()

	logger.Section("Scheduled Task: " + taskName(taskID))
	result := &domain.TaskResult{TaskID: taskID, StartedAt: s.now()}

	items, err := fn(ctx)
	result.EndedAt = s.now()
	result.ItemsProcessed = items
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}

	s.recordRun(ctx, result)
	return result, nil
}

func (s *Scheduler) recordRun(ctx context.Context, result *domain.TaskResult) {
	task, err := s.store.GetTask(ctx, result.TaskID)
	if err != nil {
		logger.Warn("scheduler: failed to load task %s: %v", result.TaskID, err)
	}
	if task == nil {
		task = &domain.ScheduledTask{ID: result.TaskID, Name: taskName(result.TaskID)}
	}

	task.LastRun = result.StartedAt
	if result.Success {
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	} else {
		task.LastError = result.Error
	}
	if task.Schedule == "" {
		task.Schedule = s.config.GetTaskConfig(result.TaskID).Schedule
	}
	if schedule, err := cron.ParseStandard(task.Schedule); err == nil {
		task.NextRun = schedule.Next(result.EndedAt)
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

func taskName(id string) string {
	if name, ok := domain.TaskNames()[id]; ok {
		return name
	}
	return id
}

// SocialCollectTask collects social messages for every stored ticker.
func SocialCollectTask(collector driving.SocialCollector, store driven.ResultStore) TaskFunc {
	return func(ctx context.Context) (int, error) {
		tickers, err := store.Tickers(ctx)
		if err != nil {
			return 0, fmt.Errorf("list tickers: %w", err)
		}
		if len(tickers) == 0 {
			return 0, nil
		}
		report, err := collector.Collect(ctx, tickers)
		if report == nil {
			return 0, err
		}
		return report.Inserted, err
	}
}

// ThemeRefreshTask re-extracts themes for every stored ticker.
func ThemeRefreshTask(batch driving.BatchService, store driven.ResultStore, opts domain.BatchOptions) TaskFunc {
	return func(ctx context.Context) (int, error) {
		tickers, err := store.Tickers(ctx)
		if err != nil {
			return 0, fmt.Errorf("list tickers: %w", err)
		}
		if len(tickers) == 0 {
			return 0, nil
		}
		report, err := batch.Run(ctx, tickers, opts, nil)
		if report == nil {
			return 0, err
		}
		return report.Succeeded + report.Empty, err
	}
}
