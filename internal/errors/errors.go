// Package errors defines the coded errors that services return and the
// API layer turns into responses. Callers match by code:
//
//	if errors.Is(err, domainerrors.ErrInvalidReference) {
//	    // the transaction was rolled back
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code. It is also the "code" field of
// API error responses.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeInvalidReference   Code = "INVALID_REFERENCE"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeIndexWrite         Code = "INDEX_WRITE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeConflict           Code = "CONFLICT"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeForbidden          Code = "FORBIDDEN"
	CodeDelivery           Code = "DELIVERY"
	CodeInternal           Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeValidation:         http.StatusBadRequest,
	CodeInvalidReference:   http.StatusUnprocessableEntity,
	CodeInvalidTransition:  http.StatusConflict,
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeConflict:           http.StatusConflict,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeDelivery:           http.StatusBadGateway,
}

// HTTPStatus maps the code to a response status. Unknown codes, and
// index write failures which never reach a client, are 500.
func (c Code) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error carries a code, a client-safe message and optional details such
// as per-field validation messages.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the response status for the error's code.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInvalidReference   = &Error{Code: CodeInvalidReference, Message: "invalid reference"}
	ErrInvalidTransition  = &Error{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrIndexWrite         = &Error{Code: CodeIndexWrite, Message: "index write failed"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrDelivery           = &Error{Code: CodeDelivery, Message: "delivery failed"}
)

func newf(code Code, format string, args ...any) *Error {
	if len(args) == 0 {
		return &Error{Code: code, Message: format}
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation reports input that fails a rule.
func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }

// Validationf is Validation with a formatted message.
func Validationf(format string, args ...any) *Error { return newf(CodeValidation, format, args...) }

// ValidationWithDetails reports input failures keyed by field.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// InvalidReferencef reports a submitted identifier that does not resolve
// to an existing record or association.
func InvalidReferencef(format string, args ...any) *Error {
	return newf(CodeInvalidReference, format, args...)
}

// InvalidTransitionf reports a status change that the state machine forbids.
func InvalidTransitionf(format string, args ...any) *Error {
	return newf(CodeInvalidTransition, format, args...)
}

// IndexWrite wraps a search index failure.
func IndexWrite(err error, msg string) *Error {
	return &Error{Code: CodeIndexWrite, Message: msg, cause: err}
}

// NotFoundf reports a missing record.
func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args...) }

// AlreadyExists reports a uniqueness violation.
func AlreadyExists(msg string) *Error { return &Error{Code: CodeAlreadyExists, Message: msg} }

// Conflict reports a request that clashes with current state.
func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }

// Unauthorized reports a missing or unusable identity.
func Unauthorized(msg string) *Error { return &Error{Code: CodeUnauthorized, Message: msg} }

// InvalidCredentials reports a failed sign-in.
func InvalidCredentials(msg string) *Error { return &Error{Code: CodeInvalidCredentials, Message: msg} }

// Forbiddenf reports an action the caller's role does not allow.
func Forbiddenf(format string, args ...any) *Error { return newf(CodeForbidden, format, args...) }

// Wrap attaches a code and message to err.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
