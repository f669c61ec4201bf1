// Package cbuf moves bytes between Go and caller-owned C memory.
//
// Every string-returning boundary operation goes through Write: the
// destination is validated and the capacity checked before a single byte is
// copied, so a failing call never leaves a partial payload behind.
package cbuf

import (
	"errors"
	"fmt"
	"unsafe"
)

// Mode selects how Write finishes the payload.
type Mode int

const (
	// Exact copies the payload only; the caller relies on the returned length.
	Exact Mode = iota
	// Terminated appends a NUL byte after the payload.
	Terminated
)

var (
	// ErrNullBuffer is returned when the destination pointer is nil.
	ErrNullBuffer = errors.New("null buffer")
	// ErrTooSmall matches every *CapacityError via errors.Is.
	ErrTooSmall = errors.New("buffer too small")
)

// CapacityError reports a destination that cannot hold the payload plus one
// reserved byte.
type CapacityError struct {
	Need int
	Have int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("expected at least %d bytes but got %d", e.Need, e.Have)
}

// Is lets errors.Is(err, ErrTooSmall) match.
func (e *CapacityError) Is(target error) bool {
	return target == ErrTooSmall
}

// Fits reports whether a payload of n bytes fits a buffer of the given
// capacity. One byte is always reserved for a terminator, in both modes.
func Fits(n int, capacity int32) bool {
	return capacity > 0 && n < int(capacity)
}

// Write copies payload into the capacity bytes starting at dst and returns
// the number of payload bytes written, never counting the terminator.
func Write(dst unsafe.Pointer, capacity int32, payload string, mode Mode) (int32, error) {
	if dst == nil {
		return 0, ErrNullBuffer
	}

	n := len(payload)
	if !Fits(n, capacity) {
		have := int(capacity)
		if have < 0 {
			have = 0
		}
		return 0, &CapacityError{Need: n + 1, Have: have}
	}

	out := unsafe.Slice((*byte)(dst), int(capacity))
	copy(out, payload)
	if mode == Terminated {
		out[n] = 0
	}
	return int32(n), nil
}
