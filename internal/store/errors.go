package store

import (
	"fmt"
	"net/http"
)

// Code is a machine-readable classification of a persistence failure. The
// save path surfaces these so the UI can render a remediation-specific
// message instead of a generic error.
type Code string

// Persistence failure codes.
const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeMissingColumn    Code = "MISSING_COLUMN"
	CodeMissingTable     Code = "MISSING_TABLE"
	CodeForeignKey       Code = "FOREIGN_KEY_VIOLATION"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus maps a persistence code to an HTTP status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeMissingColumn, CodeMissingTable:
		return http.StatusInternalServerError
	case CodeForeignKey:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a structured persistence error.
type Error struct {
	Code    Code   // machine-readable classification
	Message string // user-facing message
	Err     error  // underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    CodeNotFound,
		Message: "resource not found",
	}

	ErrConflict = &Error{
		Code:    CodeConflict,
		Message: "resource conflict",
	}

	ErrPermissionDenied = &Error{
		Code:    CodePermissionDenied,
		Message: "not allowed to write this record",
	}

	ErrMissingColumn = &Error{
		Code:    CodeMissingColumn,
		Message: "stored record is missing a required field",
	}

	ErrMissingTable = &Error{
		Code:    CodeMissingTable,
		Message: "schema marker missing; run a newer server against this data directory",
	}

	ErrForeignKey = &Error{
		Code:    CodeForeignKey,
		Message: "record references a missing owner",
	}

	ErrInternal = &Error{
		Code:    CodeInternal,
		Message: "internal storage error",
	}
)
