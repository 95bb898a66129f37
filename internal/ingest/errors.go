package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"olga-cuts/internal/show"
	"olga-cuts/internal/youtube"
)

// FetchError reports that the video source was unreachable or answered with a
// non-success status. It is never retried here.
type FetchError = youtube.FetchError

// ClassificationError reports a title naming no known show, or more than one.
type ClassificationError = show.ClassificationError

// ValidationError reports a malformed day/month/year request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Describe turns any ingestion error into a message that is safe to show to the
// person who triggered the ingestion.
func Describe(err error) string {
	var validationErr *ValidationError
	var classErr *ClassificationError
	var fetchErr *FetchError
	var persistErr *PersistenceError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &classErr):
		return fmt.Sprintf("The video %q does not belong to a known show", classErr.Title)
	case errors.Is(err, youtube.ErrCaptionsUnavailable):
		return "The video description could not be read"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The request timed out"
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode != 0 && fetchErr.StatusCode != http.StatusOK {
			return fmt.Sprintf("The video source answered with status %d", fetchErr.StatusCode)
		}
		return "The video source could not be reached"
	case errors.Is(err, youtube.ErrMalformedMarkup):
		return "The video listing could not be read"
	case errors.As(err, &persistErr):
		return "The videos could not be saved"
	default:
		return "Unexpected error while adding videos"
	}
}
