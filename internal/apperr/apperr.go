// Package apperr defines the error kinds a request can fail with and how
// each kind is reported over HTTP.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Auth
	Conflict
	NotFound
	Throttled
)

// InternalMessage is returned to clients for failures that carry no message
// of their own.
const InternalMessage = "Interner Serverfehler"

// Error is a failure with a client-safe message. Err holds the cause and is
// only ever logged.
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

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func NewValidation(msg string) *Error { return New(Validation, msg) }
func NewAuth(msg string) *Error       { return New(Auth, msg) }
func NewConflict(msg string) *Error   { return New(Conflict, msg) }
func NewNotFound(msg string) *Error   { return New(NotFound, msg) }
func NewThrottled(msg string) *Error  { return New(Throttled, msg) }

func NewInternal(msg string, err error) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// Status maps err to an HTTP status code. Errors that are not *Error are
// internal.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Throttled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that may be shown to the client for err.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Message == "" {
		return InternalMessage
	}
	return e.Message
}
