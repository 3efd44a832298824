// Package apperrors defines the error taxonomy shared by every layer of the
// auth service. Each error carries a stable machine-readable code, a human
// message and the HTTP status the transport layer should answer with.
// Internal store or codec failures are wrapped into one of these kinds at the
// service boundary and never reach a caller raw.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a taxonomy category.
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION_ERROR" // 401
	KindAuthorization  Kind = "AUTHORIZATION_ERROR"  // 403
	KindValidation     Kind = "VALIDATION_ERROR"     // 422
	KindNotFound       Kind = "NOT_FOUND"            // 404
	KindConflict       Kind = "CONFLICT"             // 409
	KindInternal       Kind = "INTERNAL_ERROR"       // 500
)

// Error is the only error type the transport layer knows how to render.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the stable machine-readable code for the error.
func (e *Error) Code() string {
	return string(e.Kind)
}

// StatusCode maps the taxonomy kind to its HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Authentication builds a 401 error. The message is user-visible, so callers
// must keep it generic enough to resist account enumeration.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization builds a 403 error.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// Validation builds a 422 error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal builds a 500 error for failures the caller cannot act on.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// Wrap attaches an internal cause to a taxonomy error. The cause is kept for
// logging and errors.Is but is never serialized to the caller.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: err}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
