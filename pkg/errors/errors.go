// Package errors provides structured error types for the piclet composer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the composition core
//   - Machine-readable error codes for per-submission failure reporting
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map to the composition failure taxonomy:
//   - PARTS_MISS: a template cell is unavailable in the parts library
//   - PORT_LOOKUP_MISS: the hierarchy walker found no matching component
//   - CONNECTION_ERROR: a named pin does not exist on a resolved cell
//   - GEOMETRY_CONSTRAINT: a route cannot satisfy bend-radius or facing rules
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConnection, "no pin %q on cell %q", pin, cell)
//	if errors.Is(err, errors.ErrCodeConnection) {
//	    // Abort this piclet, continue with the next submission.
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different failure categories.
const (
	// Composition errors
	ErrCodePartsMiss          Code = "PARTS_MISS"
	ErrCodePortLookupMiss     Code = "PORT_LOOKUP_MISS"
	ErrCodeConnection         Code = "CONNECTION_ERROR"
	ErrCodeGeometryConstraint Code = "GEOMETRY_CONSTRAINT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Environment errors
	ErrCodeIO       Code = "IO_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
