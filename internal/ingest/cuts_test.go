package ingest

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"olga-cuts/internal/db"
	"olga-cuts/internal/models"
	"olga-cuts/internal/test"
	"olga-cuts/internal/youtube"
)

type fakeSource struct {
	cuts map[string][]youtube.Cut
	err  error
}

func (f *fakeSource) FetchListing(ctx context.Context, day, month int) (string, error) {
	return "", nil
}

func (f *fakeSource) FetchCuts(ctx context.Context, hash string) ([]youtube.Cut, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cuts[hash], nil
}

func numberedCuts(n int) []youtube.Cut {
	cuts := make([]youtube.Cut, n)
	for i := range cuts {
		cuts[i] = youtube.Cut{Label: fmt.Sprintf("Corte %d", i), Start: fmt.Sprintf("00:%02d:%02d", i/60, i%60)}
	}
	return cuts
}

func cutArgs(cuts []youtube.Cut, videoID int) []driver.Value {
	args := make([]driver.Value, 0, len(cuts)*3)
	for _, c := range cuts {
		args = append(args, c.Label, c.Start, videoID)
	}
	return args
}

func TestExtractCutsWritesBatchesOfTwenty(t *testing.T) {
	_, mock := test.NewMockDB(t)

	unique := numberedCuts(45)
	// Repeat a few markers; they must not shift batch boundaries.
	found := append(append([]youtube.Cut{}, unique...), unique[3], unique[40], unique[0])
	extractor := NewCutExtractor(&fakeSource{cuts: map[string][]youtube.Cut{"aaa111": found}})

	mock.ExpectExec(`INSERT INTO cuts`).WithArgs(cutArgs(unique[0:20], 9)...).WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectExec(`INSERT INTO cuts`).WithArgs(cutArgs(unique[20:40], 9)...).WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectExec(`INSERT INTO cuts`).WithArgs(cutArgs(unique[40:45], 9)...).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`UPDATE videos SET cuts_status`).WithArgs(db.CutsCompleted, 9).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := extractor.ExtractCuts(context.Background(), "aaa111", 9)
	require.NoError(t, err)
	assert.Equal(t, 45, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractCutsStoresRepeatedMarkerOnce(t *testing.T) {
	_, mock := test.NewMockDB(t)
	extractor := NewCutExtractor(&fakeSource{cuts: map[string][]youtube.Cut{
		"aaa111": {
			{Label: "Intro", Start: "00:00:10"},
			{Label: "Intro", Start: "00:00:10"},
			{Label: "Intro", Start: "00:05:00"},
		},
	}})

	mock.ExpectExec(`INSERT INTO cuts \(label,start,video_id\) VALUES \(\$1,\$2,\$3\),\(\$4,\$5,\$6\) ON CONFLICT`).
		WithArgs("Intro", "00:00:10", 1, "Intro", "00:05:00", 1).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE videos SET cuts_status`).WithArgs(db.CutsCompleted, 1).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := extractor.ExtractCuts(context.Background(), "aaa111", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractCutsFailureKeepsEarlierBatches(t *testing.T) {
	_, mock := test.NewMockDB(t)
	unique := numberedCuts(25)
	extractor := NewCutExtractor(&fakeSource{cuts: map[string][]youtube.Cut{"aaa111": unique}})

	mock.ExpectExec(`INSERT INTO cuts`).WithArgs(cutArgs(unique[0:20], 1)...).WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectExec(`INSERT INTO cuts`).WithArgs(cutArgs(unique[20:25], 1)...).WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(`UPDATE videos SET cuts_status`).WithArgs(db.CutsFailed, 1).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := extractor.ExtractCuts(context.Background(), "aaa111", 1)
	var persistErr *PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "insert cuts", persistErr.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtractCutsFetchFailureMarksVideo(t *testing.T) {
	_, mock := test.NewMockDB(t)
	fetchErr := &youtube.FetchError{URL: "watch", StatusCode: 404}
	extractor := NewCutExtractor(&fakeSource{err: fetchErr})

	mock.ExpectExec(`UPDATE videos SET cuts_status`).WithArgs(db.CutsFailed, 4).WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := extractor.ExtractCuts(context.Background(), "aaa111", 4)
	assert.ErrorIs(t, err, fetchErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepairCuts(t *testing.T) {
	_, mock := test.NewMockDB(t)
	extractor := NewCutExtractor(&fakeSource{cuts: map[string][]youtube.Cut{
		"aaa111": {{Label: "Intro", Start: "00:00:10"}},
	}})

	rows := sqlmock.NewRows([]string{"id", "hash", "title", "date", "show", "cuts_status", "created_at", "updated_at"}).
		AddRow(1, "aaa111", "SOÑÉ QUE VOLABA 5/3", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "sone-que-volaba", db.CutsFailed, nil, nil)
	mock.ExpectQuery(`SELECT (.+) FROM videos\s+WHERE cuts_status <> 'COMPLETED'`).WithArgs(10).WillReturnRows(rows)
	mock.ExpectExec(`INSERT INTO cuts`).WithArgs("Intro", "00:00:10", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE videos SET cuts_status`).WithArgs(db.CutsCompleted, 1).WillReturnResult(sqlmock.NewResult(0, 1))

	repaired, err := extractor.RepairCuts(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupeKeepsFirstOccurrenceInOrder(t *testing.T) {
	cuts := []models.Cut{
		{Label: "B", Start: "00:20"},
		{Label: "A", Start: "00:10"},
		{Label: "B", Start: "00:20"},
		{Label: "B", Start: "00:30"},
		{Label: "A", Start: "00:10"},
	}
	assert.Equal(t, []models.Cut{
		{Label: "B", Start: "00:20"},
		{Label: "A", Start: "00:10"},
		{Label: "B", Start: "00:30"},
	}, Dedupe(cuts))
	assert.Empty(t, Dedupe(nil))
}

func TestChunkCount(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 40, 41, 100} {
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}

		chunks := Chunk(items, BatchSize)
		assert.Len(t, chunks, (n+BatchSize-1)/BatchSize, "n=%d", n)

		var flat []int
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), BatchSize)
			flat = append(flat, c...)
		}
		if n > 0 {
			assert.Equal(t, items, flat)
		}
	}
}
