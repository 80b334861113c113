package driving

import (
	"context"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

// Scheduler runs the background tasks on their cron schedules.
type Scheduler interface {
	// Start blocks until ctx is done or Stop is called. A disabled
	// scheduler returns nil immediately.
	Start(ctx context.Context) error

	// Stop waits for in-flight runs to finish.
	Stop() error

	// RunNow executes a task outside its schedule and records the run.
	RunNow(ctx context.Context, taskID string) (*domain.TaskResult, error)

	// Status lists stored tasks with up to recent of their latest runs.
	Status(ctx context.Context, recent int) ([]domain.TaskStatus, error)
}
