package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/ingest"
	"olga-cuts/pkg/tasks"
)

// CutRepairer re-runs cut extraction for videos left without cuts.
type CutRepairer interface {
	RepairCuts(ctx context.Context, limit int) (int, error)
}

type TaskHandler struct {
	asynqClient tasks.TaskEnqueuer
	ingester    backfill.Ingester
	repairer    CutRepairer
	driver      *backfill.Driver
	now         func() time.Time
}

func NewTaskHandler(client tasks.TaskEnqueuer, ingester backfill.Ingester, repairer CutRepairer, driver *backfill.Driver) *TaskHandler {
	return &TaskHandler{
		asynqClient: client,
		ingester:    ingester,
		repairer:    repairer,
		driver:      driver,
		now:         time.Now,
	}
}

func (h *TaskHandler) HandleIngestDayTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.IngestDayTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	result, err := h.ingester.IngestDay(ctx, p.Day, p.Month, p.Year)
	if err != nil {
		return markPermanent(fmt.Errorf("failed to ingest %d/%d/%d: %w", p.Day, p.Month, p.Year, err))
	}

	log.Printf("Ingested %d/%d/%d: %s, %d videos added", p.Day, p.Month, p.Year, result.Outcome, len(result.Added))
	return nil
}

// HandleIngestYesterdayTask ingests the previous day when it is a broadcast day.
func (h *TaskHandler) HandleIngestYesterdayTask(ctx context.Context, t *asynq.Task) error {
	yesterday := h.now().UTC().AddDate(0, 0, -1)
	date := calendar.Date(yesterday.Day(), int(yesterday.Month()), yesterday.Year())

	if _, err := h.driver.Days().IndexForDate(date); err != nil {
		log.Printf("Skipping %s: not a broadcast day", date.Format(calendar.Layout))
		return nil
	}

	result, err := h.ingester.IngestDay(ctx, date.Day(), int(date.Month()), date.Year())
	if err != nil {
		return markPermanent(fmt.Errorf("failed to ingest %s: %w", date.Format(calendar.Layout), err))
	}

	log.Printf("Ingested %s: %s, %d videos added", date.Format(calendar.Layout), result.Outcome, len(result.Added))
	return nil
}

// HandleBackfillStepTask runs one step of a persisted backfill run and queues the
// next one. A failing step is returned so the queue retries the same day.
func (h *TaskHandler) HandleBackfillStepTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.BackfillStepTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	run, step, err := h.driver.StepRun(ctx, p.RunID)
	if err != nil {
		return markPermanent(fmt.Errorf("backfill run %s: %w", p.RunID, err))
	}

	if step.Result != nil {
		log.Printf("Backfill run %s: day %d %s, %d videos added", run.ID, run.CurrentIndex-1, step.Result.Outcome, len(step.Result.Added))
	}
	if run.Done() {
		log.Printf("Backfill run %s finished (days %d..%d)", run.ID, run.StartIndex, run.EndIndex)
		return nil
	}

	return tasks.EnqueueBackfillStep(ctx, h.asynqClient, run.ID, run.CurrentIndex)
}

func (h *TaskHandler) HandleRepairCutsTask(ctx context.Context, t *asynq.Task) error {
	p := tasks.RepairCutsTaskPayload{Limit: tasks.DefaultRepairLimit}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("failed to unmarshal task payload: %w", err)
		}
	}

	log.Println("Repairing videos without cuts...")
	repaired, err := h.repairer.RepairCuts(ctx, p.Limit)
	if err != nil {
		return fmt.Errorf("repaired %d videos before failing: %w", repaired, err)
	}

	log.Printf("Finished repairing cuts for %d videos.", repaired)
	return nil
}

// markPermanent stops the queue from retrying errors another attempt cannot fix.
func markPermanent(err error) error {
	var validationErr *ingest.ValidationError
	var classErr *ingest.ClassificationError
	if errors.As(err, &validationErr) || errors.As(err, &classErr) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}
