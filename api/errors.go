// File: api/errors.go
//
// Structured error model for the transport core. Every fatal condition is
// reported as an *Error carrying a kind, a source location tag and an
// optional literal diagnostic; transient conditions never surface.

package api

import (
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// Kind is the closed enumeration of error conditions the core can report.
type Kind int

const (
	// KindConnectionFailure covers peer close and invalid socket state.
	KindConnectionFailure Kind = iota + 1
	// KindTimeout means no readiness was reported within the deadline.
	KindTimeout
	// KindWriteFailure is a send that cannot succeed (oversized datagram,
	// all-or-nothing violation).
	KindWriteFailure
	// KindProtocolError is a line exceeding its buffer without terminator.
	KindProtocolError
	// KindNotSupported is an operation invalid for the current transport.
	KindNotSupported
	// KindMemoryAllocationFailure is kernel resource exhaustion surfaced
	// from the polling primitive.
	KindMemoryAllocationFailure
	// KindInProgress asks the caller to retry the same call.
	KindInProgress
	// KindIOFailure is the catch-all for an unclassified OS error; the
	// captured errno travels in the cause chain.
	KindIOFailure
	// KindFailure is a generic terminal failure with no better class.
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindConnectionFailure:
		return "connection failure"
	case KindTimeout:
		return "timeout"
	case KindWriteFailure:
		return "write failure"
	case KindProtocolError:
		return "protocol error"
	case KindNotSupported:
		return "not supported"
	case KindMemoryAllocationFailure:
		return "memory allocation failure"
	case KindInProgress:
		return "in progress"
	case KindIOFailure:
		return "io failure"
	case KindFailure:
		return "failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the structured error reported through the error sink.
type Error struct {
	Kind  Kind
	At    string // source location tag, file:line
	Msg   string // optional literal diagnostic
	Cause error  // captured OS error, if any
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	if e.At != "" {
		s += " (" + e.At + ")"
	}
	return s
}

// Unwrap exposes the captured OS error to errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an *Error of the given kind with a literal diagnostic.
func NewError(kind Kind, at, msg string) *Error {
	return &Error{Kind: kind, At: at, Msg: msg}
}

// ErrnoError wraps a captured OS error as a KindIOFailure *Error.
func ErrnoError(at string, cause error, msg string) *Error {
	return &Error{Kind: KindIOFailure, At: at, Msg: msg, Cause: pkgerrors.WithStack(cause)}
}

// WrapError attaches a cause to an *Error of an explicit kind.
func WrapError(kind Kind, at string, cause error, msg string) *Error {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &Error{Kind: kind, At: at, Msg: msg, Cause: cause}
}

// At returns the caller's source location tag for error reports.
func At() string {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	// Trim to the last two path elements to keep tags stable across
	// build environments.
	slash := 0
	for i := len(file) - 1; i >= 0; i-- {
		if file[i] == '/' {
			slash++
			if slash == 2 {
				file = file[i+1:]
				break
			}
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// KindOf extracts the Kind from an error, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}

// Continue reports whether err is the non-terminal "retry the same call"
// status used by read loops.
func Continue(err error) bool { return KindOf(err) == KindInProgress }

// IsTimeout reports whether err is a readiness timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }
