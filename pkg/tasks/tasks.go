package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeIngestDay       = "ingest:day"
	TypeIngestYesterday = "ingest:yesterday"
	TypeBackfillStep    = "backfill:step"
	TypeRepairCuts      = "cuts:repair"
)

// Queues served by the worker. Backfill steps yield to day ingestion and repairs.
const (
	QueueDefault  = "default"
	QueueBackfill = "backfill"
)

// DefaultRepairLimit bounds how many videos one repair task revisits.
const DefaultRepairLimit = 50

type IngestDayTaskPayload struct {
	Day   int
	Month int
	Year  int
}

func NewIngestDayTask(day, month, year int) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestDayTaskPayload{Day: day, Month: month, Year: year})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeIngestDay, payload), nil
}

func NewIngestYesterdayTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeIngestYesterday, nil), nil
}

type BackfillStepTaskPayload struct {
	RunID uuid.UUID
	Index int
}

// NewBackfillStepTask creates the step of run at index. The task id is derived from
// both, so enqueuing the same step twice is rejected by the queue.
func NewBackfillStepTask(runID uuid.UUID, index int) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(BackfillStepTaskPayload{RunID: runID, Index: index})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.TaskID(BackfillStepTaskID(runID, index)),
		asynq.Queue(QueueBackfill),
	}
	return asynq.NewTask(TypeBackfillStep, payload), opts, nil
}

func BackfillStepTaskID(runID uuid.UUID, index int) string {
	return fmt.Sprintf("%s:%s:%d", TypeBackfillStep, runID, index)
}

type RepairCutsTaskPayload struct {
	Limit int
}

func NewRepairCutsTask(limit int) (*asynq.Task, error) {
	if limit <= 0 {
		limit = DefaultRepairLimit
	}
	payload, err := json.Marshal(RepairCutsTaskPayload{Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRepairCuts, payload), nil
}

// EnqueueBackfillStep queues the step of run at index. A step that is already
// queued counts as enqueued.
func EnqueueBackfillStep(ctx context.Context, client TaskEnqueuer, runID uuid.UUID, index int) error {
	task, opts, err := NewBackfillStepTask(runID, index)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue backfill step %d of run %s: %w", index, runID, err)
	}
	return nil
}
