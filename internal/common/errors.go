// Package common defines shared constants and sentinel errors used across
// daemon and client layers of reposync. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorWorktreeInUse = errors.New("worktree in use")

	// Request validation errors.
	ErrorValidation        = errors.New("validation error")
	ErrorInvalidConfigKey  = errors.New("invalid config key")
	ErrorIncorrectPassword = errors.New("incorrect password")

	// Remote handshake performed before a clone is accepted.
	ErrorHandshake = errors.New("handshake failed")

	// Service-level errors.
	ErrorInternal    = errors.New("internal error")
	ErrorUnavailable = errors.New("daemon unavailable")
)

// Kind classifies an Error the way callers need to react to it.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindTask       Kind = "task"
	KindInternal   Kind = "internal"
)

// Error is a structured error that survives the trip over the wire:
// a kind, a human message and an optional numeric code (task error code,
// 0 when not applicable).
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}

// Is reports whether target is the sentinel corresponding to e.Kind, so
// errors.Is(err, ErrorNotFound) works on errors decoded from the daemon.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindTransport:
		return target == ErrorUnavailable
	case KindValidation:
		return target == ErrorValidation
	case KindConflict:
		return target == ErrorAlreadyExists
	case KindNotFound:
		return target == ErrorNotFound
	case KindInternal:
		return target == ErrorInternal
	}
	return false
}

// KindOf returns the Kind matching err. Unrecognized errors are internal.
func KindOf(err error) Kind {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, ErrorUnavailable):
		return KindTransport
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorAlreadyExists), errors.Is(err, ErrorWorktreeInUse):
		return KindConflict
	case errors.Is(err, ErrorValidation), errors.Is(err, ErrorInvalidConfigKey),
		errors.Is(err, ErrorIncorrectPassword):
		return KindValidation
	case errors.Is(err, ErrorHandshake):
		return KindTask
	}
	return KindInternal
}
