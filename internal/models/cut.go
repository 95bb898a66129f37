package models

import (
	"time"

	"olga-cuts/internal/show"
)

// Cut is a labelled, timestamped segment of a video.
type Cut struct {
	ID      int    `db:"id" json:"id"`
	Label   string `db:"label" json:"label"`
	Start   string `db:"start" json:"start"`
	VideoID int    `db:"video_id" json:"videoId"`
}

// CutListing is a cut joined with the video it belongs to.
type CutListing struct {
	ID    int       `db:"id" json:"id"`
	Label string    `db:"label" json:"label"`
	Start string    `db:"start" json:"start"`
	Hash  string    `db:"hash" json:"hash"`
	Date  time.Time `db:"date" json:"date"`
	Show  show.Show `db:"show" json:"show"`
}
