package models

import (
	"errors"
	"fmt"
)

// Common error types
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("operation conflicts with current state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error codes carried by AppError and ValidationError
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// AppError represents an application-level error with context
type AppError struct {
	Code    string
	Message string
	Field   string
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

// ValidationError is returned by aggregate constructors and setters when an
// invariant would be violated. The aggregate is left untouched.
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

// Unwrap lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ErrInvalidInputWithMsg creates a validation error that is not tied to a field
func ErrInvalidInputWithMsg(message string) error {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// ErrNotFoundWithMsg creates a not found error with custom message
func ErrNotFoundWithMsg(message string) error {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Err:     ErrNotFound,
	}
}

// ErrConflictWithMsg creates a conflict error with custom message
func ErrConflictWithMsg(message string) error {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Err:     ErrConflict,
	}
}

// ErrUnauthorizedWithMsg creates an authentication error
func ErrUnauthorizedWithMsg(message string) error {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Err:     ErrUnauthorized,
	}
}

// ErrForbiddenWithMsg creates an authorization error
func ErrForbiddenWithMsg(message string) error {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Err:     ErrForbidden,
	}
}
