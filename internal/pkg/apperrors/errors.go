package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("resource not found")
)

// ValidationError reports a malformed submission. Surfaced inline (400).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError reports that the actor lacks the required role.
// Never silently downgraded (403).
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized to %s", e.Action)
}

func NewAuthorizationError(action string) *AuthorizationError {
	return &AuthorizationError{Action: action}
}

// InvalidTransitionError reports an attempted status change on a record that
// already left the pending state (409).
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q: only pending requests can be decided", e.Current, e.Requested)
}

// PersistenceError wraps a failed store write. The operation is considered
// not-applied (500).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// GenerationError reports that the language model returned no usable output.
// The UI collaborator surfaces a generic apology and must not retry (502).
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("model generation failure: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func NewGenerationError(err error) *GenerationError {
	return &GenerationError{Err: err}
}
