// Package errkind defines the typed errors surfaced by refsync operations:
// a machine-readable kind, a human message, and an optional hint printed
// by the CLI.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind string

const (
	NotFound       Kind = "not-found"
	AlreadyExists  Kind = "already-exists"
	InvalidInput   Kind = "invalid-input"
	Filesystem     Kind = "filesystem"
	GitFailure     Kind = "git-failure"
	AmbiguousMatch Kind = "ambiguous-match"
)

// Error is a classified operation failure.
type Error struct {
	Kind Kind
	Msg  string
	Hint string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg != "" {
		return e.Msg + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WithHint attaches a hint and returns the error for chaining.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HintOf returns the hint attached to err, if any.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
