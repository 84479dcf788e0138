package surprise

import (
	"errors"
	"net/http"
)

// Domain errors for surprise operations.
var (
	ErrNoPrediction    = errors.New("no prediction recorded for signpost")
	ErrUnknownSignpost = errors.New("unknown signpost")
	ErrInvalidWindow   = errors.New("window_days must be positive")
	ErrInvalidMinScore = errors.New("min_score must not be negative")
)

// MapHTTPStatus maps surprise domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoPrediction), errors.Is(err, ErrUnknownSignpost):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrInvalidMinScore):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
