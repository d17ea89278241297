package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a concurrent-modification or uniqueness conflict.
// Callers should re-read the current state and retry with fresh data.
var ErrConflict = errors.New("conflict with current resource state")

// ErrStateConflict indicates a lifecycle transition was attempted while its
// preconditions were unmet. The caller must correct the precondition first;
// the operation is never retried automatically.
var ErrStateConflict = errors.New("state transition precondition not met")

// ErrMissingApproval indicates a project has time entries in a timesheet but
// no corresponding approval record. This is a data-integrity fault repaired
// only by an explicit reconciliation, never patched silently.
var ErrMissingApproval = errors.New("approval record missing for project")

// ErrIntegrity indicates stored data violates a structural invariant
// (e.g. a timesheet whose week_end is not week_start + 6 days).
var ErrIntegrity = errors.New("data integrity fault")

// ErrForbidden indicates the acting user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-like status code and a
// human-readable message for the API boundary.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
