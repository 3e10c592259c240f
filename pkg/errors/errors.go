// Package errors provides structured error types for sldlayout.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map onto the layout error taxonomy:
//   - UNHANDLED_PATTERN: classification or block merging met an arrangement
//     no rule covers and the layout parameters ask for a hard failure
//   - PRECONDITION: a required argument is absent or the graph breaks its
//     own invariants
//   - INVALID_INPUT: decoding or validating user input failed
//   - INCONSISTENT_STATE: an invariant break that must abort the run
//
// Inconsistent states that can be recovered are logged as warnings and never
// surface as error values.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnhandledPattern, "no merge rule applies").At(cell.ID())
//	if errors.Is(err, errors.ErrCodeUnhandledPattern) {
//	    log.Warn("fallback", "cell", errors.ElementOf(err))
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	// Layout
	ErrCodeUnhandledPattern  Code = "UNHANDLED_PATTERN"
	ErrCodePrecondition      Code = "PRECONDITION"
	ErrCodeInconsistentState Code = "INCONSISTENT_STATE"

	// Input
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error, optionally about one diagram element (a node,
// cell or voltage level) and caused by another error.
type Error struct {
	Code    Code
	Message string
	Element string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Element != "" {
		msg += " (at " + e.Element + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// At records the element the error is about and returns e.
func (e *Error) At(element string) *Error {
	e.Element = element
	return e
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error caused by cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in the chain of err has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the first *Error in the chain of err, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ElementOf returns the element recorded anywhere in the chain of err, or "".
func ElementOf(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Element != "" {
			return e.Element
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns the message of the first *Error in the chain of err
// without its code, or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code onto the status the HTTP server answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodePrecondition:
		return http.StatusBadRequest
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnhandledPattern, ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
