package ports

import "errors"

// Store errors shared across store implementations.
var (
	// ErrResultNotFound is returned by ResultStore.GetLatest when no
	// completed run exists for the requested (survey, subject) pair.
	ErrResultNotFound = errors.New("aggregation result not found")

	// ErrSurveyNotFound is returned by SurveyStore implementations
	// when the requested survey does not exist.
	ErrSurveyNotFound = errors.New("survey not found")
)
