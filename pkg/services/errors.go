// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest        = errors.New("invalid request")
	ErrAutomationNil         = errors.New("automation cannot be nil")
	ErrNameRequired          = errors.New("automation name is required")
	ErrTriggerRequired       = errors.New("automation trigger type is required")
	ErrUnknownTriggerType    = errors.New("unknown trigger type")
	ErrTriggerConfigRequired = errors.New("trigger type requires configuration")
	ErrInvalidStepTree       = errors.New("invalid step tree")
	ErrInvalidActionConfig   = errors.New("invalid action configuration")
	ErrInvalidCondition      = errors.New("invalid condition")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrAutomationNil) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrTriggerRequired) ||
		errors.Is(err, ErrUnknownTriggerType) ||
		errors.Is(err, ErrTriggerConfigRequired) ||
		errors.Is(err, ErrInvalidStepTree) ||
		errors.Is(err, ErrInvalidActionConfig) ||
		errors.Is(err, ErrInvalidCondition)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
