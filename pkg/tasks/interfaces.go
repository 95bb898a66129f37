package tasks

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer defines the interface for enqueuing tasks.
// It's implemented by asynq.Client, and can be mocked for testing.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
