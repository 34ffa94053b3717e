// Package apperr defines the error kinds shared by the engine, the stores
// and the HTTP layer. Callers wrap a kind with a human readable reason:
//
//	fmt.Errorf("%w: content must not be empty", apperr.ErrValidation)
//
// and the HTTP layer maps the kind to a status with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is malformed input: empty content, unknown reaction kind.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is an unknown shout-out, comment, report or user id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is an ownership or role violation.
	ErrForbidden = errors.New("forbidden")
	// ErrNoChange is a no-op edit. It is a benign terminal state, not a failure.
	ErrNoChange = errors.New("no change")
	// ErrConflict is a concurrent update that lost; the caller should retry.
	ErrConflict = errors.New("conflict")
)

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...any) error {
	return wrap(ErrForbidden, format, args...)
}

func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err is one of the kinds that is safe to show
// to the caller verbatim.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNoChange)
}

// Reason strips the kind prefix, leaving the short reason string.
func Reason(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrNoChange, ErrConflict} {
		if errors.Is(err, kind) {
			if i := strings.Index(msg, kind.Error()+": "); i >= 0 {
				return msg[i+len(kind.Error())+2:]
			}
			return kind.Error()
		}
	}
	return msg
}
