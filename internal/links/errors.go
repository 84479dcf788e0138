package links

import (
	"errors"
	"net/http"
)

// Domain errors for link operations. Moderation errors carry actionable
// context when wrapped: which reason is missing, what the current state is.
var (
	ErrNotFound              = errors.New("link not found")
	ErrDuplicate             = errors.New("link already exists for this event and signpost")
	ErrInvalidTransition     = errors.New("transition not permitted")
	ErrMissingReason         = errors.New("a reason is required for this action")
	ErrMissingActor          = errors.New("an actor identity is required for this action")
	ErrConflictingTransition = errors.New("link was modified concurrently; re-fetch and retry")
	ErrInvalidStatus         = errors.New("invalid moderation status")
	ErrEventRetracted        = errors.New("event is already retracted")
)

// MapHTTPStatus maps link domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrConflictingTransition),
		errors.Is(err, ErrEventRetracted):
		return http.StatusConflict
	case errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrMissingActor),
		errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
