package governance

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown proposal or vote identifiers.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor is not allowed to perform the
	// operation (e.g. cancelling someone else's proposal).
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState is returned for transition attempts on a proposal that
	// already reached a terminal status.
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError reports a rejected field at proposal creation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// VotingClosedError is returned when a cast arrives after the deadline or on
// a non-active proposal. Reason is suitable for direct display.
type VotingClosedError struct {
	Reason string
}

func (e *VotingClosedError) Error() string {
	return "voting closed: " + e.Reason
}

// ExternalServiceError wraps a storage or identity collaborator failure.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func storageErr(err error) error {
	return &ExternalServiceError{Service: "storage", Err: err}
}
