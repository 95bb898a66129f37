package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"olga-cuts/internal/backfill"
	"olga-cuts/internal/ingest"
	"olga-cuts/internal/middleware"
	"olga-cuts/internal/models"
	"olga-cuts/internal/youtube"
	"olga-cuts/pkg/tasks"
)

type Handlers struct {
	ingester    backfill.Ingester
	driver      *backfill.Driver
	asynqClient tasks.TaskEnqueuer
	validate    *validator.Validate
	baseURL     string
	videoURL    func(hash string) string
}

func New(ingester backfill.Ingester, driver *backfill.Driver, asynqClient tasks.TaskEnqueuer, baseURL string, videoURL func(hash string) string) *Handlers {
	return &Handlers{
		ingester:    ingester,
		driver:      driver,
		asynqClient: asynqClient,
		validate:    validator.New(),
		baseURL:     baseURL,
		videoURL:    videoURL,
	}
}

// Router wires every route. Routes that reach the video source or the store for
// writing go through limiter when one is given.
func (h *Handlers) Router(limiter *middleware.RateLimiterMiddleware) *mux.Router {
	limit := func(f http.HandlerFunc) http.Handler {
		if limiter == nil {
			return f
		}
		return limiter.Middleware(f)
	}

	r := mux.NewRouter()
	r.Handle("/cut/add", limit(h.PostAddCuts)).Methods(http.MethodPost)
	r.Handle("/process", limit(h.PostProcess)).Methods(http.MethodPost)
	r.HandleFunc("/process", h.GetProcess).Methods(http.MethodGet)
	r.Handle("/process/step", limit(h.PostProcessStep)).Methods(http.MethodPost)
	r.Handle("/backfill", limit(h.PostBackfill)).Methods(http.MethodPost)
	r.HandleFunc("/backfill/{id}", h.GetBackfill).Methods(http.MethodGet)
	r.HandleFunc("/cut/all", h.GetAllCuts).Methods(http.MethodGet)
	r.HandleFunc("/cut/month", h.GetMonthCuts).Methods(http.MethodGet)
	r.HandleFunc("/feed.xml", h.GetRSSFeed).Methods(http.MethodGet)
	return r
}

// dayForm is the day/month/year triple every ingestion request carries.
type dayForm struct {
	Day   int `validate:"min=1,max=31"`
	Month int `validate:"min=1,max=12"`
	Year  int `validate:"min=2000,max=2100"`
}

// parseDayForm reads and validates day, month and year from the request form.
func (h *Handlers) parseDayForm(r *http.Request) (dayForm, error) {
	if err := r.ParseForm(); err != nil {
		return dayForm{}, &ingest.ValidationError{Message: "Bad request"}
	}

	var f dayForm
	var err error
	if f.Day, err = formInt(r, "day"); err != nil {
		return f, err
	}
	if f.Month, err = formInt(r, "month"); err != nil {
		return f, err
	}
	if f.Year, err = formInt(r, "year"); err != nil {
		return f, err
	}
	if err := h.validate.Struct(f); err != nil {
		return f, &ingest.ValidationError{Message: describeValidation(err)}
	}
	return f, nil
}

func formInt(r *http.Request, name string) (int, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, &ingest.ValidationError{Message: fmt.Sprintf("%s is required", name)}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ingest.ValidationError{Message: fmt.Sprintf("%s must be a number", name)}
	}
	return n, nil
}

// optionalFormInt returns nil when the field is absent.
func optionalFormInt(r *http.Request, name string) (*int, error) {
	if r.FormValue(name) == "" {
		return nil, nil
	}
	n, err := formInt(r, name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("%s is out of range (%s=%s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return err.Error()
}

// statusFor maps an ingestion error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var validationErr *ingest.ValidationError
	var classErr *ingest.ClassificationError
	var fetchErr *ingest.FetchError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &classErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr), errors.Is(err, youtube.ErrMalformedMarkup):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// errorText is nil for a nil error so that successes encode "error": null.
func errorText(err error) *string {
	if err == nil {
		return nil
	}
	msg := ingest.Describe(err)
	return &msg
}

// writeIngestError answers an ingesting route with its usual body shape.
func writeIngestError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), ingestResponse{Error: errorText(err), AddedVideos: []models.VideoSummary{}})
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error handling request: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: ingest.Describe(err)})
}
