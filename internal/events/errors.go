package events

import (
	"errors"
	"net/http"
)

// Domain errors for event operations.
var (
	ErrNotFound         = errors.New("event not found")
	ErrDuplicate        = errors.New("event already ingested")
	ErrInvalidSource    = errors.New("invalid source type")
	ErrInvalidTier      = errors.New("invalid evidence tier")
	ErrMissingTitle     = errors.New("event title is required")
	ErrMissingIdentity  = errors.New("event identity key is required")
	ErrAlreadyRetracted = errors.New("event is already retracted")
)

// MapHTTPStatus maps event domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrAlreadyRetracted):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSource),
		errors.Is(err, ErrInvalidTier),
		errors.Is(err, ErrMissingTitle),
		errors.Is(err, ErrMissingIdentity):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
