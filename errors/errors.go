package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrFeedUnavailable = fmt.Errorf("change feed unavailable")
	ErrStreamStopped   = fmt.Errorf("stream stopped")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
)

// MapToHTTPStatus translates a domain error into the status returned to clients.
// Anything unknown is an internal error.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrFeedUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
