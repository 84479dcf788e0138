package registry

import "errors"

// Validation errors for alias rule loading.
var (
	ErrNoRules         = errors.New("alias rule file contains no rules")
	ErrEmptyPattern    = errors.New("rule pattern must not be empty")
	ErrEmptySignpost   = errors.New("rule signpost code must not be empty")
	ErrConfidenceRange = errors.New("rule confidence must be within [0, 1]")
)
