// Package serrors implements semantic error kinds shared by the scanner, its
// CLI and its HTTP API. A kind classifies a failure (configuration, internal,
// canceled, ...) independently of the concrete cause it wraps.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind. It allows distinguishing semantic kinds from ordinary errors.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel).
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrConfig indicates the scan could not be set up: the blocklist source is
	// missing or unreadable, or an option is invalid. Fatal to the whole scan.
	ErrConfig = NewKind("CONFIG")
	// ErrInternal indicates the worker pool failed (e.g. a worker panicked).
	ErrInternal = NewKind("INTERNAL")
	// ErrCanceled indicates the caller gave up before the scan completed.
	ErrCanceled = NewKind("CANCELED")
	// ErrBadRequest indicates the client sent invalid data.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
)

// Error carries a kind, an optional wrapped cause and an optional message.
//
// errors.Is and errors.As match either the kind sentinel or anything in the
// cause chain. Error() renders "<msg>: <cause>", falling back to whichever
// part is set, and finally to the kind name.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error with a formatted message and no cause.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error that wraps err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is this error's kind or is found in its cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As extracts either the kind sentinel or a type from the cause chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the semantic kind sentinel associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// KindOf returns the first semantic kind found in err's chain, or nil when err
// carries none.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}
