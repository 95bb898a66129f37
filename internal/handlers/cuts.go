package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"olga-cuts/internal/calendar"
	"olga-cuts/internal/db"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/models"
)

// ingestResponse is the body of the routes that ingest. Error is null on success.
type ingestResponse struct {
	Error       *string               `json:"error"`
	Outcome     ingest.Outcome        `json:"outcome,omitempty"`
	AddedVideos []models.VideoSummary `json:"addedVideos"`
}

// PostAddCuts ingests one day. Nothing published and already ingested are
// successful outcomes with no added videos.
func (h *Handlers) PostAddCuts(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseDayForm(r)
	if err != nil {
		writeIngestError(w, err)
		return
	}

	result, err := h.ingester.IngestDay(r.Context(), form.Day, form.Month, form.Year)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			log.Printf("Error ingesting %d/%d/%d: %v", form.Day, form.Month, form.Year, err)
		}
		writeIngestError(w, err)
		return
	}

	added := result.Added
	if added == nil {
		added = []models.VideoSummary{}
	}
	writeJSON(w, http.StatusOK, ingestResponse{Outcome: result.Outcome, AddedVideos: added})
}

func (h *Handlers) GetAllCuts(w http.ResponseWriter, r *http.Request) {
	cuts, err := db.GetAllCuts(r.Context())
	if err != nil {
		log.Printf("Error getting cuts: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listing(cuts))
}

// GetMonthCuts lists the cuts of videos broadcast on the indexed days of a month,
// first and last day included.
func (h *Handlers) GetMonthCuts(w http.ResponseWriter, r *http.Request) {
	year, err := formInt(r, "year")
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := formInt(r, "month")
	if err != nil {
		writeError(w, err)
		return
	}
	if month < 1 || month > 12 {
		writeError(w, &ingest.ValidationError{Message: "month is out of range"})
		return
	}

	first, last, err := h.driver.Days().MonthRange(year, time.Month(month))
	if errors.Is(err, calendar.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No days listed for this month"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	cuts, err := db.GetCutsBetween(r.Context(), first, last)
	if err != nil {
		log.Printf("Error getting cuts between %s and %s: %v", first.Format(calendar.Layout), last.Format(calendar.Layout), err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, listing(cuts))
}

func listing(cuts []models.CutListing) []models.CutListing {
	if cuts == nil {
		return []models.CutListing{}
	}
	return cuts
}
