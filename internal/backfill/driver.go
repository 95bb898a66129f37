// Package backfill iterates ranges of the day index, ingesting one day per step.
// Steps are triggered from outside (an HTTP call, a queued task or the CLI) so a
// range can be resumed from its cursor after an interruption.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/db"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/models"
)

// Unset marks a cursor end that has not been resolved yet.
const Unset = -1

// Cursor is a position inside an inclusive day-index range.
type Cursor struct {
	Start   int `json:"start"`
	End     int `json:"end"`
	Current int `json:"current"`
}

// Done reports whether every day of the range has been ingested.
func (c Cursor) Done() bool {
	return c.End != Unset && c.Current > c.End
}

// RangeRequest is what the backfill surface receives. Without Start the date opens
// a new range; with Start the date closes it.
type RangeRequest struct {
	Day   int
	Month int
	Year  int
	Start *int
}

// Ingester ingests one calendar day.
type Ingester interface {
	IngestDay(ctx context.Context, day, month, year int) (*ingest.Result, error)
}

// StepResult is the outcome of one step: the day's result and the advanced cursor.
type StepResult struct {
	Cursor Cursor
	Result *ingest.Result
}

type Driver struct {
	days     *calendar.DayIndex
	ingester Ingester
}

func NewDriver(days *calendar.DayIndex, ingester Ingester) *Driver {
	return &Driver{days: days, ingester: ingester}
}

// Days returns the index the driver resolves dates against.
func (d *Driver) Days() *calendar.DayIndex {
	return d.days
}

// Resolve turns a backfill request into a cursor positioned at its start.
func (d *Driver) Resolve(req RangeRequest) (Cursor, error) {
	if !calendar.IsValid(req.Day, req.Month, req.Year) {
		return Cursor{}, &ingest.ValidationError{Message: fmt.Sprintf("%d/%d/%d is not a valid date", req.Day, req.Month, req.Year)}
	}

	idx, err := d.days.IndexForDate(calendar.Date(req.Day, req.Month, req.Year))
	if errors.Is(err, calendar.ErrNotFound) {
		return Cursor{}, &ingest.ValidationError{Message: "This day is not on the list of days"}
	}
	if err != nil {
		return Cursor{}, err
	}

	if req.Start == nil {
		return Cursor{Start: idx, End: Unset, Current: idx}, nil
	}
	return NewCursor(d.days, *req.Start, idx)
}

// NewCursor validates an inclusive [start, end] range against the index.
func NewCursor(days *calendar.DayIndex, start, end int) (Cursor, error) {
	if start < 0 || end >= days.Len() {
		return Cursor{}, &ingest.ValidationError{Message: fmt.Sprintf("range %d..%d is outside the list of days", start, end)}
	}
	if start > end {
		return Cursor{}, &ingest.ValidationError{Message: fmt.Sprintf("range start %d is after its end %d", start, end)}
	}
	return Cursor{Start: start, End: end, Current: start}, nil
}

// Step ingests the day at the cursor. On success the returned cursor points at the
// next day; on failure the caller keeps its cursor and may retry the same day.
func (d *Driver) Step(ctx context.Context, c Cursor) (*StepResult, error) {
	if c.End == Unset {
		return nil, &ingest.ValidationError{Message: "the range has no end"}
	}
	if c.Done() {
		return &StepResult{Cursor: c}, nil
	}

	date, err := d.days.DateForIndex(c.Current)
	if err != nil {
		return nil, &ingest.ValidationError{Message: err.Error()}
	}

	result, err := d.ingester.IngestDay(ctx, date.Day(), int(date.Month()), date.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to ingest day %d (%s): %w", c.Current, date.Format(calendar.Layout), err)
	}

	c.Current++
	return &StepResult{Cursor: c, Result: result}, nil
}

// StartRun persists a run for the inclusive range so workers can step it.
func (d *Driver) StartRun(ctx context.Context, start, end int) (models.BackfillRun, error) {
	if _, err := NewCursor(d.days, start, end); err != nil {
		return models.BackfillRun{}, err
	}
	run, err := db.CreateBackfillRun(ctx, start, end)
	if err != nil {
		return models.BackfillRun{}, &ingest.PersistenceError{Op: "create backfill run", Err: err}
	}
	log.Printf("Created backfill run %s for days %d..%d", run.ID, start, end)
	return run, nil
}

// StepRun runs the next step of a persisted run and moves its cursor. A failed step
// is recorded on the run and returned; the cursor stays where it was.
func (d *Driver) StepRun(ctx context.Context, id uuid.UUID) (models.BackfillRun, *StepResult, error) {
	run, err := db.GetBackfillRun(ctx, id)
	if err != nil {
		return run, nil, &ingest.PersistenceError{Op: "load backfill run", Err: err}
	}
	if run.Done() {
		return run, &StepResult{Cursor: RunCursor(run)}, nil
	}

	step, err := d.Step(ctx, RunCursor(run))
	if err != nil {
		if recErr := db.RecordBackfillError(ctx, id, ingest.Describe(err)); recErr != nil {
			log.Printf("failed to record error on backfill run %s: %v", id, recErr)
		}
		return run, nil, err
	}

	if err := db.AdvanceBackfillRun(ctx, id, step.Cursor.Current); err != nil {
		return run, nil, &ingest.PersistenceError{Op: "advance backfill run", Err: err}
	}
	run.CurrentIndex = step.Cursor.Current
	run.LastError = nil
	return run, step, nil
}

// RunCursor is the cursor stored on a run.
func RunCursor(run models.BackfillRun) Cursor {
	return Cursor{Start: run.StartIndex, End: run.EndIndex, Current: run.CurrentIndex}
}

// Progress accumulates the videos added across the steps of a range.
type Progress struct {
	Cursor Cursor
	Added  []models.VideoSummary
}

// Record folds a successful step into the progress.
func (p *Progress) Record(step *StepResult) {
	p.Cursor = step.Cursor
	if step.Result != nil {
		p.Added = append(p.Added, step.Result.Added...)
	}
}
