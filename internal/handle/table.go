// Package handle hands out flat integer tokens for Go values that must be
// referenced from C.
//
// A token packs the table kind, a slot generation and a slot index, so a
// released or foreign token is recognised instead of dereferenced.
package handle

import (
	"errors"
	"fmt"
	"sync"
)

// Token is the opaque value given to the caller. Zero is the null handle.
type Token uint64

// Null is the zero token.
const Null Token = 0

// Kind distinguishes tables so that a token from one is rejected by another.
type Kind uint8

const (
	genBits   = 24
	genMask   = 1<<genBits - 1
	indexBits = 32
)

var (
	// ErrNull is returned for the zero token.
	ErrNull = errors.New("null handle")
	// ErrStale is returned for a token whose slot was released or never existed.
	ErrStale = errors.New("stale handle")
	// ErrWrongKind is returned for a token minted by another table.
	ErrWrongKind = errors.New("handle of wrong kind")
)

func makeToken(kind Kind, gen uint32, index uint32) Token {
	return Token(uint64(kind)<<(genBits+indexBits) | uint64(gen&genMask)<<indexBits | uint64(index))
}

// Kind returns the kind byte encoded in the token.
func (t Token) Kind() Kind { return Kind(t >> (genBits + indexBits)) }

// Generation returns the slot generation encoded in the token.
func (t Token) Generation() uint32 { return uint32(t>>indexBits) & genMask }

// Index returns the slot index encoded in the token.
func (t Token) Index() uint32 { return uint32(t) }

func (t Token) String() string {
	if t == Null {
		return "handle(null)"
	}
	return fmt.Sprintf("handle(kind=%d gen=%d idx=%d)", t.Kind(), t.Generation(), t.Index())
}

type slot[T any] struct {
	gen  uint32
	used bool
	val  T
}

// Table stores values of type T behind tokens. Lookups take a read lock only,
// so concurrent readers of the same token never wait on each other.
type Table[T any] struct {
	kind Kind

	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
	live  int
}

// NewTable creates a table whose tokens carry kind. Kind must be non-zero
// for tokens to be told apart from tables of another kind.
func NewTable[T any](kind Kind) *Table[T] {
	return &Table[T]{kind: kind}
}

// Insert stores v and returns its token.
func (t *Table[T]) Insert(v T) Token {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{gen: 1})
	}

	s := &t.slots[idx]
	s.used = true
	s.val = v
	t.live++
	return makeToken(t.kind, s.gen, idx)
}

func (t *Table[T]) check(tok Token) (uint32, error) {
	if tok == Null {
		return 0, ErrNull
	}
	if tok.Kind() != t.kind {
		return 0, fmt.Errorf("%w: %s", ErrWrongKind, tok)
	}
	idx := tok.Index()
	if int(idx) >= len(t.slots) {
		return 0, fmt.Errorf("%w: %s", ErrStale, tok)
	}
	s := t.slots[idx]
	if !s.used || s.gen != tok.Generation() {
		return 0, fmt.Errorf("%w: %s", ErrStale, tok)
	}
	return idx, nil
}

// Get returns the value behind tok.
func (t *Table[T]) Get(tok Token) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero T
	idx, err := t.check(tok)
	if err != nil {
		return zero, err
	}
	return t.slots[idx].val, nil
}

// Remove releases tok and returns the value it referenced. The slot is
// recycled under a new generation, so tok stays invalid forever after.
func (t *Table[T]) Remove(tok Token) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	idx, err := t.check(tok)
	if err != nil {
		return zero, err
	}

	s := &t.slots[idx]
	v := s.val
	s.val = zero
	s.used = false
	s.gen = (s.gen + 1) & genMask
	if s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, idx)
	t.live--
	return v, nil
}

// Len returns the number of live tokens.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}
