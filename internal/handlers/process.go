package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/db"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/models"
	"olga-cuts/pkg/tasks"
)

// PostProcess resolves a date into a backfill range and redirects to it. Without
// start the date opens the range; with start it closes it.
func (h *Handlers) PostProcess(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseDayForm(r)
	if err != nil {
		writeIngestError(w, err)
		return
	}
	start, err := optionalFormInt(r, "start")
	if err != nil {
		writeIngestError(w, err)
		return
	}

	cursor, err := h.driver.Resolve(backfill.RangeRequest{Day: form.Day, Month: form.Month, Year: form.Year, Start: start})
	if err != nil {
		writeIngestError(w, err)
		return
	}

	target := fmt.Sprintf("/process?start=%d", cursor.Start)
	if cursor.End != backfill.Unset {
		target = fmt.Sprintf("/process?start=%d&end=%d", cursor.Start, cursor.End)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type cursorResponse struct {
	Start int  `json:"start"`
	End   *int `json:"end"`
}

// GetProcess describes the range a redirect points at so a driver can start
// stepping through it.
func (h *Handlers) GetProcess(w http.ResponseWriter, r *http.Request) {
	start, err := formInt(r, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := optionalFormInt(r, "end")
	if err != nil {
		writeError(w, err)
		return
	}
	if end != nil {
		if _, err := backfill.NewCursor(h.driver.Days(), start, *end); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, cursorResponse{Start: start, End: end})
}

type stepResponse struct {
	Error       *string               `json:"error"`
	AddedVideos []models.VideoSummary `json:"addedVideos"`
	Current     int                   `json:"current"`
	Done        bool                  `json:"done"`
}

// PostProcessStep ingests the day at current. On failure current is echoed back
// unchanged so the caller can retry the same day.
func (h *Handlers) PostProcessStep(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, &ingest.ValidationError{Message: "Bad request"})
		return
	}

	values := make([]int, 3)
	for i, name := range []string{"start", "end", "current"} {
		n, err := formInt(r, name)
		if err != nil {
			writeError(w, err)
			return
		}
		values[i] = n
	}
	start, end, current := values[0], values[1], values[2]

	cursor, err := backfill.NewCursor(h.driver.Days(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if current < start || current > end+1 {
		writeError(w, &ingest.ValidationError{Message: fmt.Sprintf("current %d is outside %d..%d", current, start, end)})
		return
	}
	cursor.Current = current

	step, err := h.driver.Step(r.Context(), cursor)
	if err != nil {
		writeJSON(w, statusFor(err), stepResponse{
			Error:       errorText(err),
			AddedVideos: []models.VideoSummary{},
			Current:     cursor.Current,
			Done:        cursor.Done(),
		})
		return
	}

	var progress backfill.Progress
	progress.Record(step)
	added := progress.Added
	if added == nil {
		added = []models.VideoSummary{}
	}
	writeJSON(w, http.StatusOK, stepResponse{
		AddedVideos: added,
		Current:     progress.Cursor.Current,
		Done:        progress.Cursor.Done(),
	})
}

type runResponse struct {
	models.BackfillRun
	Done bool `json:"done"`
}

// PostBackfill persists a run over [start, end] and queues its first step.
func (h *Handlers) PostBackfill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, &ingest.ValidationError{Message: "Bad request"})
		return
	}
	start, err := formInt(r, "start")
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := formInt(r, "end")
	if err != nil {
		writeError(w, err)
		return
	}

	run, err := h.driver.StartRun(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := tasks.EnqueueBackfillStep(r.Context(), h.asynqClient, run.ID, run.CurrentIndex); err != nil {
		log.Printf("Error enqueuing first step of backfill run %s: %v", run.ID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, runResponse{BackfillRun: run, Done: run.Done()})
}

func (h *Handlers) GetBackfill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, &ingest.ValidationError{Message: "Invalid backfill run id"})
		return
	}

	run, err := db.GetBackfillRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Backfill run not found"})
		return
	}
	if err != nil {
		log.Printf("Error getting backfill run %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{BackfillRun: run, Done: run.Done()})
}
