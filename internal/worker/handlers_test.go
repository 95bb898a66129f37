package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/calendar"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/test"
	"olga-cuts/pkg/tasks"
)

type fakeIngester struct {
	calls []time.Time
	err   error
}

func (f *fakeIngester) IngestDay(ctx context.Context, day, month, year int) (*ingest.Result, error) {
	date := calendar.Date(day, month, year)
	f.calls = append(f.calls, date)
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.Result{Date: date, Outcome: ingest.NothingPublished}, nil
}

type fakeRepairer struct {
	limit int
	err   error
}

func (f *fakeRepairer) RepairCuts(ctx context.Context, limit int) (int, error) {
	f.limit = limit
	return 2, f.err
}

func newHandler(t *testing.T, enqueuer tasks.TaskEnqueuer, ingester *fakeIngester, repairer *fakeRepairer) *TaskHandler {
	t.Helper()
	days, err := calendar.Load(strings.NewReader("2024-03-04\n2024-03-05\n2024-03-06\n2024-03-07\n2024-03-08\n"))
	require.NoError(t, err)
	return NewTaskHandler(enqueuer, ingester, repairer, backfill.NewDriver(days, ingester))
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return b
}

func TestHandleIngestDayTask(t *testing.T) {
	ingester := &fakeIngester{}
	handler := newHandler(t, &test.MockTaskEnqueuer{}, ingester, nil)

	task := asynq.NewTask(tasks.TypeIngestDay, mustMarshal(t, tasks.IngestDayTaskPayload{Day: 5, Month: 3, Year: 2024}))
	require.NoError(t, handler.HandleIngestDayTask(context.Background(), task))
	assert.Equal(t, []time.Time{calendar.Date(5, 3, 2024)}, ingester.calls)
}

func TestHandleIngestDayTaskSkipsRetryOnPermanentErrors(t *testing.T) {
	ingester := &fakeIngester{err: &ingest.ClassificationError{Title: "UN PROGRAMA NUEVO 5/3"}}
	handler := newHandler(t, &test.MockTaskEnqueuer{}, ingester, nil)

	task := asynq.NewTask(tasks.TypeIngestDay, mustMarshal(t, tasks.IngestDayTaskPayload{Day: 5, Month: 3, Year: 2024}))
	err := handler.HandleIngestDayTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	ingester.err = &ingest.FetchError{URL: "x", StatusCode: 503}
	err = handler.HandleIngestDayTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleIngestYesterdayTask(t *testing.T) {
	ingester := &fakeIngester{}
	handler := newHandler(t, &test.MockTaskEnqueuer{}, ingester, nil)

	handler.now = func() time.Time { return time.Date(2024, 3, 6, 3, 0, 0, 0, time.UTC) }
	require.NoError(t, handler.HandleIngestYesterdayTask(context.Background(), asynq.NewTask(tasks.TypeIngestYesterday, nil)))
	assert.Equal(t, []time.Time{calendar.Date(5, 3, 2024)}, ingester.calls)

	// Sunday the 10th is not in the table.
	handler.now = func() time.Time { return time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC) }
	require.NoError(t, handler.HandleIngestYesterdayTask(context.Background(), asynq.NewTask(tasks.TypeIngestYesterday, nil)))
	assert.Len(t, ingester.calls, 1)
}

func backfillRow(id uuid.UUID, start, end, current int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "start_index", "end_index", "current_index", "last_error", "created_at", "updated_at"}).
		AddRow(id.String(), start, end, current, nil, time.Now(), nil)
}

func TestHandleBackfillStepTaskQueuesNextStep(t *testing.T) {
	_, mock := test.NewMockDB(t)
	enqueuer := &test.MockTaskEnqueuer{}
	ingester := &fakeIngester{}
	handler := newHandler(t, enqueuer, ingester, nil)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM backfill_runs WHERE id = \$1`).WithArgs(id).WillReturnRows(backfillRow(id, 1, 3, 1))
	mock.ExpectExec(`UPDATE backfill_runs\s+SET current_index`).WithArgs(2, id).WillReturnResult(sqlmock.NewResult(0, 1))

	task := asynq.NewTask(tasks.TypeBackfillStep, mustMarshal(t, tasks.BackfillStepTaskPayload{RunID: id, Index: 1}))
	require.NoError(t, handler.HandleBackfillStepTask(context.Background(), task))

	assert.Equal(t, []time.Time{calendar.Date(5, 3, 2024)}, ingester.calls)
	require.Len(t, enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeBackfillStep, enqueuer.EnqueuedTasks[0].Type())

	var next tasks.BackfillStepTaskPayload
	require.NoError(t, json.Unmarshal(enqueuer.EnqueuedTasks[0].Payload(), &next))
	assert.Equal(t, tasks.BackfillStepTaskPayload{RunID: id, Index: 2}, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleBackfillStepTaskFinishesRun(t *testing.T) {
	_, mock := test.NewMockDB(t)
	enqueuer := &test.MockTaskEnqueuer{}
	handler := newHandler(t, enqueuer, &fakeIngester{}, nil)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM backfill_runs`).WithArgs(id).WillReturnRows(backfillRow(id, 1, 3, 3))
	mock.ExpectExec(`UPDATE backfill_runs\s+SET current_index`).WithArgs(4, id).WillReturnResult(sqlmock.NewResult(0, 1))

	task := asynq.NewTask(tasks.TypeBackfillStep, mustMarshal(t, tasks.BackfillStepTaskPayload{RunID: id, Index: 3}))
	require.NoError(t, handler.HandleBackfillStepTask(context.Background(), task))
	assert.Empty(t, enqueuer.EnqueuedTasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleBackfillStepTaskFailureIsRetried(t *testing.T) {
	_, mock := test.NewMockDB(t)
	enqueuer := &test.MockTaskEnqueuer{}
	handler := newHandler(t, enqueuer, &fakeIngester{err: errors.New("connection reset")}, nil)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM backfill_runs`).WithArgs(id).WillReturnRows(backfillRow(id, 1, 3, 2))
	mock.ExpectExec(`UPDATE backfill_runs SET last_error`).WithArgs("Unexpected error while adding videos", id).WillReturnResult(sqlmock.NewResult(0, 1))

	task := asynq.NewTask(tasks.TypeBackfillStep, mustMarshal(t, tasks.BackfillStepTaskPayload{RunID: id, Index: 2}))
	err := handler.HandleBackfillStepTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, enqueuer.EnqueuedTasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleRepairCutsTask(t *testing.T) {
	repairer := &fakeRepairer{}
	handler := newHandler(t, &test.MockTaskEnqueuer{}, &fakeIngester{}, repairer)

	task, err := tasks.NewRepairCutsTask(10)
	require.NoError(t, err)
	require.NoError(t, handler.HandleRepairCutsTask(context.Background(), task))
	assert.Equal(t, 10, repairer.limit)

	require.NoError(t, handler.HandleRepairCutsTask(context.Background(), asynq.NewTask(tasks.TypeRepairCuts, nil)))
	assert.Equal(t, tasks.DefaultRepairLimit, repairer.limit)

	repairer.err = errors.New("boom")
	assert.Error(t, handler.HandleRepairCutsTask(context.Background(), task))
}
