package tracker

import (
	"errors"
	"fmt"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/metrics"
)

var (
	// ErrValidation marks a missing or malformed field, or a uniqueness
	// violation. Match it with errors.Is; the concrete error is *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrMissingUser is returned when no usable user identifier resolves.
	ErrMissingUser = errors.New("user ID required")
	// ErrUserNotFound is returned when an identifier matches no user.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable wraps unexpected store failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError describes which field failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMissingUser) ||
		errors.Is(err, ErrUserNotFound)
}

func record(workflow string, err error) {
	switch {
	case err == nil:
		metrics.RecordWorkflow(workflow, metrics.OutcomeSuccess)
	case IsClientError(err):
		metrics.RecordWorkflow(workflow, metrics.OutcomeClientError)
	default:
		metrics.RecordWorkflow(workflow, metrics.OutcomeServerError)
	}
}
