package airlinesim

import "errors"

var (
	// ErrNotFound is returned when a referenced team or market record is absent.
	ErrNotFound = errors.New("not found")

	// ErrServiceUnavailable wraps any failed or timed out text-generation call.
	ErrServiceUnavailable = errors.New("text generation service unavailable")

	// ErrMalformedResponse wraps a text-generation response that could not be parsed.
	ErrMalformedResponse = errors.New("malformed text generation response")

	// ErrAlreadyExists is returned when registering a team id that is taken.
	ErrAlreadyExists = errors.New("already exists")

	ErrInvalidPlan = errors.New("invalid plan")
	ErrEmptyBatch  = errors.New("no plans to process")
)
