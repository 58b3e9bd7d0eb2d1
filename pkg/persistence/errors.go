package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrAutomationNotFound indicates an automation was not found by the given identifier.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrContinuationNotFound indicates a continuation was not found or was
	// already consumed by a concurrent resumption.
	ErrContinuationNotFound = errors.New("continuation not found")
)

// IsAutomationNotFound checks if an error indicates an automation was not found.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}

// IsContinuationNotFound checks if an error indicates a continuation was not
// found or already consumed.
func IsContinuationNotFound(err error) bool {
	return errors.Is(err, ErrContinuationNotFound)
}
