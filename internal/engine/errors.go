package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies aggregation run failures for callers.
type ErrorKind string

const (
	// KindValidation covers malformed weight configuration caught
	// during the Validating phase, before any computation.
	KindValidation ErrorKind = "validation"

	// KindInvariant covers computation invariant violations: given
	// well-typed input these are unreachable, so one indicates an
	// upstream contract breach. They are fatal and logged, never
	// silently recovered.
	KindInvariant ErrorKind = "invariant"

	// KindRead covers collaborator I/O failures during the bounded
	// read phase.
	KindRead ErrorKind = "read"

	// KindPersistence covers failures writing the completed result.
	KindPersistence ErrorKind = "persistence"

	// KindCancelled covers runs cancelled before completion.
	KindCancelled ErrorKind = "cancelled"
)

// AggregationError is the single structured error callers receive when
// a run fails. A failed run persists nothing: callers always get either
// a complete AggregationResult or an AggregationError, never a partial
// result.
type AggregationError struct {
	SurveyID  string
	SubjectID string

	// Stage names the pipeline stage (or phase) that failed.
	Stage string

	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation run survey=%s subject=%s failed in %s (%s): %v",
		e.SurveyID, e.SubjectID, e.Stage, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *AggregationError) Unwrap() error { return e.Err }

// AsAggregationError unwraps err into an *AggregationError when one is
// present in its chain.
func AsAggregationError(err error) (*AggregationError, bool) {
	var ae *AggregationError
	ok := errors.As(err, &ae)
	return ae, ok
}
