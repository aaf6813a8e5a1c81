package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures returned by the services.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindInvalidInput      ErrorKind = "INVALID_INPUT"
	KindConflict          ErrorKind = "CONFLICT"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
)

// Error is an expected failure whose message can be shown to the caller verbatim.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return newError(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(KindForbidden, format, args...)
}

func InvalidInput(format string, args ...interface{}) error {
	return newError(KindInvalidInput, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(KindConflict, format, args...)
}

func InvalidTransition(format string, args ...interface{}) error {
	return newError(KindInvalidTransition, format, args...)
}

// KindOf returns the kind of err, or "" when err is not a service error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
