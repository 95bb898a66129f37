package db

import (
	"context"

	"github.com/Masterminds/squirrel"
	"olga-cuts/internal/models"
)

const (
	CutsPending   = "PENDING"
	CutsCompleted = "COMPLETED"
	CutsFailed    = "FAILED"
)

// FindExistingHashes returns the subset of hashes already stored.
func FindExistingHashes(ctx context.Context, hashes []string) ([]string, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select("hash").From("videos").Where(squirrel.Eq{"hash": hashes}).ToSql()
	if err != nil {
		return nil, err
	}

	var existing []string
	err = DB.SelectContext(ctx, &existing, query, args...)
	return existing, err
}

// InsertVideos inserts all videos in one statement and returns the rows that were
// actually created. A hash inserted concurrently by someone else is skipped by the
// unique constraint and is absent from the result.
func InsertVideos(ctx context.Context, videos []models.NewVideo) ([]models.VideoSummary, error) {
	if len(videos) == 0 {
		return nil, nil
	}

	builder := psql.Insert("videos").Columns("hash", "title", "date", "show", "cuts_status")
	for _, v := range videos {
		builder = builder.Values(v.Hash, v.Title, v.Date, v.Show, CutsPending)
	}
	query, args, err := builder.Suffix("ON CONFLICT (hash) DO NOTHING RETURNING id, hash, title").ToSql()
	if err != nil {
		return nil, err
	}

	var added []models.VideoSummary
	err = DB.SelectContext(ctx, &added, query, args...)
	return added, err
}

func UpdateVideoCutsStatus(ctx context.Context, id int, status string) error {
	_, err := DB.ExecContext(ctx, "UPDATE videos SET cuts_status = $1, updated_at = NOW() WHERE id = $2", status, id)
	return err
}

// GetVideosWithIncompleteCuts lists videos whose cut extraction never finished,
// oldest first.
func GetVideosWithIncompleteCuts(ctx context.Context, limit int) ([]models.Video, error) {
	query := `
		SELECT id, hash, title, date, show, cuts_status, created_at, updated_at
		FROM videos
		WHERE cuts_status <> 'COMPLETED'
		ORDER BY date ASC, id ASC
		LIMIT $1
	`
	var videos []models.Video
	err := DB.SelectContext(ctx, &videos, query, limit)
	return videos, err
}

// GetLatestVideos returns the most recently broadcast videos.
func GetLatestVideos(ctx context.Context, limit int) ([]models.Video, error) {
	query := `
		SELECT id, hash, title, date, show, cuts_status, created_at, updated_at
		FROM videos
		ORDER BY date DESC, id DESC
		LIMIT $1
	`
	var videos []models.Video
	err := DB.SelectContext(ctx, &videos, query, limit)
	return videos, err
}
