package models

import (
	"time"

	"github.com/google/uuid"
)

// BackfillRun is the persisted cursor of a day-range backfill.
type BackfillRun struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	StartIndex   int        `db:"start_index" json:"start"`
	EndIndex     int        `db:"end_index" json:"end"`
	CurrentIndex int        `db:"current_index" json:"current"`
	LastError    *string    `db:"last_error" json:"lastError,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// Done reports whether every day in the range has been ingested.
func (r BackfillRun) Done() bool {
	return r.CurrentIndex > r.EndIndex
}
