// Package xerrors provides structured error types for the erdograph tool.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP surfaces
//   - Machine-readable error codes for programmatic handling
//   - User-facing messages that name the offending value and the limit
//     violated, so failures are actionable without a debugger
//
// # Error Codes
//
// Codes group errors by how they propagate: INVALID_PARAMETER and
// FORMAT_ERROR abort the whole invocation before any graph mutation,
// IO_ERROR is surfaced verbatim with the path, NOT_FOUND covers lookups
// of nodes or files.
//
// # Usage
//
//	err := xerrors.New(xerrors.CodeInvalidParameter, "node count must be positive, got %d", n)
//	if xerrors.Is(err, xerrors.CodeInvalidParameter) {
//	    // fatal: exit non-zero
//	}
//
//	// Wrap existing errors
//	err := xerrors.Wrap(xerrors.CodeIO, origErr, "write %s", path)
package xerrors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure taxonomy.
const (
	// CodeInvalidParameter marks invalid generation or CLI parameters.
	// Fatal: aborts before any graph mutation.
	CodeInvalidParameter Code = "INVALID_PARAMETER"

	// CodeFormat marks malformed persisted input. Fatal for load; the
	// underlying parser detail is preserved in the cause chain.
	CodeFormat Code = "FORMAT_ERROR"

	// CodeIO marks missing files and write failures. Fatal, surfaced
	// verbatim with the path and never retried.
	CodeIO Code = "IO_ERROR"

	// CodeNotFound marks lookups of absent resources (nodes, cache keys).
	CodeNotFound Code = "NOT_FOUND"

	// CodeInternal marks unexpected internal errors.
	CodeInternal Code = "INTERNAL_ERROR"
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
func (e *Error) Unwrap() error { return e.Cause }

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

// Is reports whether err carries the given error code.
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
