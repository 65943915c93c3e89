package domain

import (
	"errors"
	"fmt"
)

// Weight configuration errors. These are fatal to an aggregation run:
// they are surfaced during the Validating phase before any computation.
var (
	// ErrInvalidWeight indicates a negative weight in an assignment list.
	ErrInvalidWeight = errors.New("weight must not be negative")

	// ErrNoAssignments indicates an empty weight assignment list.
	ErrNoAssignments = errors.New("no weight assignments provided")
)

// Normalization invariant errors. Given well-typed input these are
// unreachable; hitting one means an upstream collaborator broke its
// contract.
var (
	// ErrValueKindMismatch indicates a raw value whose kind does not
	// match its item's response type.
	ErrValueKindMismatch = errors.New("raw value kind does not match item type")

	// ErrUnknownOption indicates a multiple-choice answer referencing
	// an option ID the item does not define.
	ErrUnknownOption = errors.New("selected option not defined on item")

	// ErrDegenerateScale indicates a rating item whose declared bounds
	// collapse to a single point (max <= min).
	ErrDegenerateScale = errors.New("rating scale bounds are degenerate")
)

// ErrUnknownItem indicates a response referencing an item that is not
// part of the survey's trait definitions.
var ErrUnknownItem = errors.New("response references unknown item")

// ErrUnknownRespondent indicates a response from a respondent who is
// not on the subject's panel for this run.
var ErrUnknownRespondent = errors.New("response from respondent not on panel")

// WeightError reports a malformed weight assignment with the offending
// entry's identifier for operator-facing messages.
type WeightError struct {
	// ID is the trait ID or category label of the bad assignment.
	// Empty for list-level problems such as an empty assignment set.
	ID string

	// Weight is the offending value, meaningful only for per-entry errors.
	Weight int

	// Err is the underlying sentinel (ErrInvalidWeight, ErrNoAssignments).
	Err error
}

// Error implements the error interface.
func (e *WeightError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("weight validation: %v", e.Err)
	}
	return fmt.Sprintf("weight validation: %q weight %d: %v", e.ID, e.Weight, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *WeightError) Unwrap() error { return e.Err }

// InvariantError wraps a normalization or aggregation invariant breach
// with the response coordinates needed to trace it back to the upstream
// contract violation. The engine treats these as fatal and logs them; it
// never silently recovers.
type InvariantError struct {
	SubjectID    string
	RespondentID string
	ItemID       string
	Err          error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: subject=%s respondent=%s item=%s: %v",
		e.SubjectID, e.RespondentID, e.ItemID, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *InvariantError) Unwrap() error { return e.Err }
