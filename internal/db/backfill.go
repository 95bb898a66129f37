package db

import (
	"context"

	"github.com/google/uuid"
	"olga-cuts/internal/models"
)

func CreateBackfillRun(ctx context.Context, start, end int) (models.BackfillRun, error) {
	run := models.BackfillRun{}
	err := DB.GetContext(ctx, &run, `
		INSERT INTO backfill_runs (id, start_index, end_index, current_index)
		VALUES ($1, $2, $3, $2)
		RETURNING id, start_index, end_index, current_index, last_error, created_at, updated_at`,
		uuid.New(), start, end)
	return run, err
}

func GetBackfillRun(ctx context.Context, id uuid.UUID) (models.BackfillRun, error) {
	run := models.BackfillRun{}
	err := DB.GetContext(ctx, &run, "SELECT * FROM backfill_runs WHERE id = $1", id)
	return run, err
}

// AdvanceBackfillRun moves the cursor forward to current. It never moves a cursor
// backwards, so replaying a finished step is harmless.
func AdvanceBackfillRun(ctx context.Context, id uuid.UUID, current int) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE backfill_runs
		SET current_index = $1, last_error = NULL, updated_at = NOW()
		WHERE id = $2 AND current_index < $1`,
		current, id)
	return err
}

func RecordBackfillError(ctx context.Context, id uuid.UUID, message string) error {
	_, err := DB.ExecContext(ctx, "UPDATE backfill_runs SET last_error = $1, updated_at = NOW() WHERE id = $2", message, id)
	return err
}
