package ingest

import (
	"errors"
	"net/http"
)

// Domain errors for ingest operations.
var (
	ErrNotFound         = errors.New("ingest run not found")
	ErrRunInFlight      = errors.New("a run for this connector is already in flight")
	ErrUnknownConnector = errors.New("unknown connector")
	ErrMalformedItem    = errors.New("feed item is missing both title and URL")
)

// MapHTTPStatus maps ingest domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownConnector):
		return http.StatusNotFound
	case errors.Is(err, ErrRunInFlight):
		return http.StatusConflict
	case errors.Is(err, ErrMalformedItem):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
