package driven

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// SchedulerStore keeps the scheduler's task state and run log so that
// schedules survive restarts.
type SchedulerStore interface {
	// GetTask loads one task. A missing task yields nil, nil.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns every stored task ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask upserts by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask drops a task. Unknown IDs are not an error.
	DeleteTask(ctx context.Context, taskID string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit runs, newest first.
	// A non-positive limit returns the whole log.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory trims each task's log to its newest keep runs.
	PruneHistory(ctx context.Context, keep int) error
}
