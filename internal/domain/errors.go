package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when a lookup is attempted against a catalog with no records
	ErrEmptyCatalog = errors.New("item catalog is empty")

	// ErrMissingRequiredField is returned when an upstream record lacks a field the summary cannot omit
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrItemNotFound is returned when the detail query has no item for the requested id
	ErrItemNotFound = errors.New("item not found")

	// ErrUpstreamFailure is returned when the tarkov.dev API request fails
	ErrUpstreamFailure = errors.New("tarkov API request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// MissingFieldError names the record and field that were absent upstream.
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("%s: %s", ErrMissingRequiredField, e.Field)
	}
	return fmt.Sprintf("%s: %s (record %s)", ErrMissingRequiredField, e.Field, e.Record)
}

// Is reports ErrMissingRequiredField so callers can branch with errors.Is.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}
