package middleware

import "errors"

var (
	errMissingIssuer   = errors.New("auth issuer required when enabled")
	errMissingClientID = errors.New("auth client_id required when enabled")
)
