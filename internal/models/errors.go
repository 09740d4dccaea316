package models

import (
	"errors"
	"fmt"
)

// Common error types
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("invalid input")
	ErrPrecondition = errors.New("operation forbidden in current state")
	ErrGateway      = errors.New("messaging gateway failure")
	ErrStorage      = errors.New("storage failure")
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
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

// ErrValidationWithMsg creates a validation error (caller's fault, not retried)
func ErrValidationWithMsg(message string) error {
	return &AppError{
		Code:    "VALIDATION",
		Message: message,
		Err:     ErrValidation,
	}
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Err:     ErrNotFound,
	}
}

// ErrPreconditionWithMsg creates a precondition error: the operation was
// invoked in a state that forbids it
func ErrPreconditionWithMsg(message string) error {
	return &AppError{
		Code:    "PRECONDITION",
		Message: message,
		Err:     ErrPrecondition,
	}
}

// ErrGatewayWithCause wraps a messaging gateway failure. Gateway errors are
// recorded per recipient, never surfaced as fatal to a campaign launch.
func ErrGatewayWithCause(err error) error {
	return &AppError{
		Code:    "GATEWAY",
		Message: "gateway send failed",
		Err:     fmt.Errorf("%w: %v", ErrGateway, err),
	}
}

// ErrStorageWithCause wraps a persistence layer failure. Storage errors are
// fatal to the individual operation and surfaced to the caller.
func ErrStorageWithCause(op string, err error) error {
	return &AppError{
		Code:    "STORAGE",
		Message: fmt.Sprintf("storage failure during %s", op),
		Err:     fmt.Errorf("%w: %v", ErrStorage, err),
	}
}
