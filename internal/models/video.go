package models

import (
	"time"

	"olga-cuts/internal/show"
)

// Video is a published recording, identified by the source's content hash.
type Video struct {
	ID         int        `db:"id" json:"id"`
	Hash       string     `db:"hash" json:"hash"`
	Title      string     `db:"title" json:"title"`
	Date       time.Time  `db:"date" json:"date"`
	Show       show.Show  `db:"show" json:"show"`
	CutsStatus string     `db:"cuts_status" json:"cutsStatus"`
	CreatedAt  *time.Time `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// NewVideo is a video about to be inserted.
type NewVideo struct {
	Hash  string
	Title string
	Show  show.Show
	Date  time.Time
}

// VideoSummary is what ingestion reports for every video it created.
type VideoSummary struct {
	ID    int    `db:"id" json:"id"`
	Hash  string `db:"hash" json:"hash"`
	Title string `db:"title" json:"title"`
}
