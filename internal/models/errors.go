package models

import "errors"

// Custom errors
var (
	// ErrUnresolvedName indicates a league or team name could not be resolved
	// to a canonical archive identity. The fixture is skipped, never fatal.
	ErrUnresolvedName = errors.New("name could not be normalized")

	// ErrNoHistoricalMatch indicates the matcher found no record within
	// tolerance and confidence bounds.
	ErrNoHistoricalMatch = errors.New("no historical match found")

	// ErrInsufficientData indicates the empirical sample is empty.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrClassifierUnavailable indicates the classifier artifact is missing,
	// its schema does not match, or the confidence gate was not cleared.
	// Callers degrade to empirical-only analysis.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrSchemaMismatch indicates a persisted bet key collides with a
	// different payload. Fatal; must not silently overwrite.
	ErrSchemaMismatch = errors.New("bet key collides with different payload")

	ErrNotFound = errors.New("record not found")
)
