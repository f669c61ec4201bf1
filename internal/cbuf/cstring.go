package cbuf

import (
	"errors"
	"fmt"
	"unicode/utf8"
	"unsafe"

	"github.com/codefionn/hlbridge/internal/consts"
)

var (
	// ErrNullString is returned for a nil string pointer.
	ErrNullString = errors.New("null string pointer")
	// ErrUnterminated is returned when no NUL byte is found within consts.MaxCStringLen.
	ErrUnterminated = errors.New("string is not NUL-terminated")
)

// UTF8Error describes the first invalid byte sequence of a C string.
// ErrorLen is the length of the longest prefix at ValidUpTo that could
// still start a valid sequence, and is zero when Incomplete is set.
type UTF8Error struct {
	ValidUpTo  int
	ErrorLen   int
	Incomplete bool
}

func (e *UTF8Error) Error() string {
	if e.Incomplete {
		return fmt.Sprintf("incomplete utf-8 byte sequence from index %d", e.ValidUpTo)
	}
	return fmt.Sprintf("invalid utf-8 sequence of %d bytes from index %d", e.ErrorLen, e.ValidUpTo)
}

// CString returns the bytes of the NUL-terminated string at p, without the
// terminator. The slice aliases caller memory and must not outlive the call.
func CString(p unsafe.Pointer) ([]byte, error) {
	if p == nil {
		return nil, ErrNullString
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
		if n >= consts.MaxCStringLen {
			return nil, ErrUnterminated
		}
	}
	return unsafe.Slice((*byte)(p), n), nil
}

// DecodeUTF8 reads the C string at p and returns it as a Go string after
// validating its encoding.
func DecodeUTF8(p unsafe.Pointer) (string, error) {
	b, err := CString(p)
	if err != nil {
		return "", err
	}
	if err := validate(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func validate(b []byte) error {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			n, incomplete := invalidPrefix(b[i:])
			if incomplete {
				return &UTF8Error{ValidUpTo: i, Incomplete: true}
			}
			return &UTF8Error{ValidUpTo: i, ErrorLen: n}
		}
		i += size
	}
	return nil
}

// invalidPrefix measures the bad sequence at the start of b. It returns the
// number of bytes that still formed a valid prefix before the sequence broke
// (at least one), or incomplete when b ends before the sequence does.
func invalidPrefix(b []byte) (n int, incomplete bool) {
	lo, hi := byte(0x80), byte(0xBF)
	var width int
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		width = 2
	case c == 0xE0:
		width, lo = 3, 0xA0
	case c == 0xED:
		width, hi = 3, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		width = 3
	case c == 0xF0:
		width, lo = 4, 0x90
	case c == 0xF4:
		width, hi = 4, 0x8F
	case c >= 0xF1 && c <= 0xF3:
		width = 4
	default:
		return 1, false
	}

	for k := 1; k < width; k++ {
		if k >= len(b) {
			return 0, true
		}
		if b[k] < lo || b[k] > hi {
			return k, false
		}
		// Only the second byte has a narrowed range.
		lo, hi = 0x80, 0xBF
	}
	// A full sequence that DecodeRune rejected cannot happen; treat it as
	// a single bad byte.
	return 1, false
}
