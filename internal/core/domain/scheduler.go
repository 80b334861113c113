package domain

import "time"

// Built-in background tasks.
const (
	TaskIDSocialCollect = "social-collect"
	TaskIDThemeRefresh  = "theme-refresh"
)

// TaskNames maps task IDs to display names.
func TaskNames() map[string]string {
	return map[string]string{
		TaskIDSocialCollect: "Social Collection",
		TaskIDThemeRefresh:  "Theme Refresh",
	}
}

// ScheduledTask is the persisted state of one recurring task.
type ScheduledTask struct {
	ID   string
	Name string

	// Schedule is a standard five-field cron expression.
	Schedule string

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is cleared by the next successful run.
	LastError string

	Enabled bool
}

// TaskResult records a single run of a task.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// ItemsProcessed counts tickers refreshed or messages stored.
	ItemsProcessed int
}

// Duration is the wall time of the run.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskStatus pairs a stored task with its most recent runs.
type TaskStatus struct {
	Task   ScheduledTask
	Recent []TaskResult
}

// SchedulerConfig is the scheduler section of the settings.
type SchedulerConfig struct {
	// Enabled switches the whole scheduler on or off.
	Enabled bool

	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Schedule string
}

// GetTaskConfig returns the zero TaskConfig for unknown tasks.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig collects social messages daily at 06:00 and
// refreshes themes every Sunday at 03:00.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDSocialCollect: {Enabled: true, Schedule: "0 6 * * *"},
			TaskIDThemeRefresh:  {Enabled: true, Schedule: "0 3 * * 0"},
		},
	}
}
