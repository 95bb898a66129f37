package db

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"olga-cuts/internal/models"
)

// InsertCuts inserts one batch of cuts. Pairs already stored for the same video are
// skipped. It returns the number of rows created.
func InsertCuts(ctx context.Context, cuts []models.Cut) (int64, error) {
	if len(cuts) == 0 {
		return 0, nil
	}

	builder := psql.Insert("cuts").Columns("label", "start", "video_id")
	for _, c := range cuts {
		builder = builder.Values(c.Label, c.Start, c.VideoID)
	}
	query, args, err := builder.Suffix("ON CONFLICT (video_id, label, start) DO NOTHING").ToSql()
	if err != nil {
		return 0, err
	}

	res, err := DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func selectCutListing() squirrel.SelectBuilder {
	return psql.
		Select("cuts.id", "cuts.label", "cuts.start", "videos.hash", "videos.date", "videos.show").
		From("cuts").
		InnerJoin("videos ON videos.id = cuts.video_id").
		OrderBy("videos.date ASC", "cuts.id ASC")
}

func GetAllCuts(ctx context.Context) ([]models.CutListing, error) {
	query, args, err := selectCutListing().ToSql()
	if err != nil {
		return nil, err
	}

	var cuts []models.CutListing
	err = DB.SelectContext(ctx, &cuts, query, args...)
	return cuts, err
}

// GetCutsBetween returns cuts of videos broadcast in [from, to].
func GetCutsBetween(ctx context.Context, from, to time.Time) ([]models.CutListing, error) {
	query, args, err := selectCutListing().
		Where(squirrel.GtOrEq{"videos.date": from}).
		Where(squirrel.LtOrEq{"videos.date": to}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var cuts []models.CutListing
	err = DB.SelectContext(ctx, &cuts, query, args...)
	return cuts, err
}

func GetCutsByVideoIDs(ctx context.Context, videoIDs []int) ([]models.Cut, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}

	query, args, err := psql.Select("id", "label", "start", "video_id").
		From("cuts").
		Where(squirrel.Eq{"video_id": videoIDs}).
		OrderBy("video_id", "start", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var cuts []models.Cut
	err = DB.SelectContext(ctx, &cuts, query, args...)
	return cuts, err
}
