// Package diag carries failures across the C boundary.
//
// Inside the library every operation returns an ordinary Go error. At the
// boundary that error is reduced to a negative Code for the return value and
// parked in the calling thread's Sink, where the caller can measure and drain
// its message exactly once.
package diag

import (
	"errors"
	"fmt"
)

// Code is the negative status returned by a failing boundary operation.
// Zero and positive results are byte counts and mean success.
type Code int32

const (
	General              Code = -1
	BufferTooSmall       Code = -10
	BufferNullPointer    Code = -11
	SyntaxNotFound       Code = -20
	SyntaxSetNullPointer Code = -21
	ThemeNotFound        Code = -30
	ThemeSetNullPointer  Code = -31
)

// Codes lists every defined code.
var Codes = []Code{
	General,
	BufferTooSmall,
	BufferNullPointer,
	SyntaxNotFound,
	SyntaxSetNullPointer,
	ThemeNotFound,
	ThemeSetNullPointer,
}

func (c Code) String() string {
	switch c {
	case General:
		return "General"
	case BufferTooSmall:
		return "BufferTooSmall"
	case BufferNullPointer:
		return "BufferNullPointer"
	case SyntaxNotFound:
		return "SyntaxNotFound"
	case SyntaxSetNullPointer:
		return "SyntaxSetNullPointer"
	case ThemeNotFound:
		return "ThemeNotFound"
	case ThemeSetNullPointer:
		return "ThemeSetNullPointer"
	default:
		return fmt.Sprintf("Code(%d)", int32(c))
	}
}

// Error is a boundary failure: a code, the message the caller will read back,
// and an optional cause that is logged but never handed across.
type Error struct {
	code  Code
	msg   string
	cause error
}

// New creates an Error without a cause.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap creates an Error whose cause is err.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{code: code, msg: msg, cause: err}
}

// Error returns the top-level message only; the cause chain stays reachable
// through Unwrap.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the boundary status for this failure.
func (e *Error) Code() Code { return e.code }

// CodeOf extracts the Code carried by err, or General for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return General
}

// Chain returns err followed by each of its causes, outermost first.
func Chain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		err = errors.Unwrap(err)
	}
	return chain
}
