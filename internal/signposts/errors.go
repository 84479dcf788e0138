package signposts

import (
	"errors"
	"net/http"
)

// Domain errors for signpost operations.
var (
	ErrNotFound  = errors.New("signpost not found")
	ErrDuplicate = errors.New("signpost already exists")
)

// MapHTTPStatus maps signpost domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
