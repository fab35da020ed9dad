// Package apperror defines the error taxonomy shared by services and the HTTP
// boundary. Services return *Error values; the echo error handler turns them
// into the response envelope with the matching status code.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindPermission
	KindNotFound
	KindConflict
	KindUpstream
)

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified application error. Message is safe to show to
// clients; Err carries the underlying cause for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error.
func (e *Error) Status() int { return e.Kind.Status() }

func newErr(k Kind, msg string, cause []error) *Error {
	e := &Error{Kind: k, Message: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// Validation reports missing or malformed input.
func Validation(msg string, cause ...error) *Error { return newErr(KindValidation, msg, cause) }

// Auth reports bad credentials or an invalid, expired or stale token.
func Auth(msg string, cause ...error) *Error { return newErr(KindAuth, msg, cause) }

// Permission reports an ownership mismatch.
func Permission(msg string, cause ...error) *Error { return newErr(KindPermission, msg, cause) }

// NotFound reports a missing entity.
func NotFound(msg string, cause ...error) *Error { return newErr(KindNotFound, msg, cause) }

// Conflict reports a uniqueness violation such as a taken username.
func Conflict(msg string, cause ...error) *Error { return newErr(KindConflict, msg, cause) }

// Upstream reports a media store failure.
func Upstream(msg string, cause ...error) *Error { return newErr(KindUpstream, msg, cause) }

// Internal reports an unexpected failure.
func Internal(msg string, cause ...error) *Error { return newErr(KindInternal, msg, cause) }

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}
