// Package bridge implements the operations behind the C ABI.
//
// Each exported operation takes the id of the calling OS thread, does its
// work through ordinary Go error returns, and at the very end reduces a
// failure to a diag.Code that is returned while the error itself is parked
// in that thread's sink. No operation panics across the boundary.
package bridge

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/codefionn/hlbridge/internal/catalog"
	"github.com/codefionn/hlbridge/internal/cbuf"
	"github.com/codefionn/hlbridge/internal/diag"
	"github.com/codefionn/hlbridge/internal/handle"
	"github.com/codefionn/hlbridge/internal/logger"
	"github.com/codefionn/hlbridge/internal/render"
)

// Version is reported by hlbridge_version.
const Version = "0.1.0"

// Handle kinds. Tokens of one kind are rejected by the other table.
const (
	syntaxSetKind handle.Kind = 1
	themeSetKind  handle.Kind = 2
)

// Bridge owns the handle tables, the per-thread error sinks and the renderer.
type Bridge struct {
	errs       *diag.Registry
	syntaxSets *handle.Table[*catalog.SyntaxSet]
	themeSets  *handle.Table[*catalog.ThemeSet]
	renderer   *render.Renderer
	log        *logger.Logger
}

// New creates a Bridge rendering through r. A nil r uses render defaults.
func New(r *render.Renderer) *Bridge {
	if r == nil {
		r = render.New(render.DefaultOptions())
	}
	return &Bridge{
		errs:       diag.NewRegistry(),
		syntaxSets: handle.NewTable[*catalog.SyntaxSet](syntaxSetKind),
		themeSets:  handle.NewTable[*catalog.ThemeSet](themeSetKind),
		renderer:   r,
		log:        logger.Global().WithPrefix("bridge"),
	}
}

// Renderer returns the renderer used by HighlightToHTML.
func (b *Bridge) Renderer() *render.Renderer { return b.renderer }

// LiveHandles returns the number of unreleased syntax and theme catalogs.
func (b *Bridge) LiveHandles() (syntaxSets, themeSets int) {
	return b.syntaxSets.Len(), b.themeSets.Len()
}

// run executes op for thread tid. A returned error or a panic is recorded
// in the thread's sink and turned into its code.
func (b *Bridge) run(tid uint64, name string, op func() (int32, error)) (n int32) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Recovered panic in %s: %v", name, r)
			b.errs.Record(tid, diag.Wrap(diag.General, "Internal error", fmt.Errorf("panic in %s: %v", name, r)))
			n = int32(diag.General)
		}
	}()

	n, err := op()
	if err != nil {
		b.errs.Record(tid, err)
		return int32(diag.CodeOf(err))
	}
	return n
}

func nullBuffer(code diag.Code) error {
	return diag.Wrap(code, "Null buffer", cbuf.ErrNullBuffer)
}

// handleError maps a failed table lookup to the caller-facing null pointer
// code. Stale and foreign tokens are reported like null ones.
func handleError(code diag.Code, msg string, err error) error {
	if errors.Is(err, handle.ErrNull) {
		return diag.New(code, msg)
	}
	return diag.Wrap(code, msg, err)
}

func decodeError(what string, err error) error {
	return diag.Wrap(diag.General, err.Error(), fmt.Errorf("decode %s: %w", what, err))
}

// write is the single bounded write every string-returning operation ends with.
func write(buf unsafe.Pointer, capacity int32, payload string, mode cbuf.Mode) (int32, error) {
	n, err := cbuf.Write(buf, capacity, payload, mode)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, cbuf.ErrNullBuffer):
		return 0, nullBuffer(diag.BufferNullPointer)
	case errors.Is(err, cbuf.ErrTooSmall):
		return 0, diag.Wrap(diag.BufferTooSmall, "Buffer too small", err)
	default:
		return 0, diag.Wrap(diag.General, "Write failed", err)
	}
}

func (b *Bridge) syntaxSet(tok handle.Token, msg string) (*catalog.SyntaxSet, error) {
	ss, err := b.syntaxSets.Get(tok)
	if err != nil {
		return nil, handleError(diag.SyntaxSetNullPointer, msg, err)
	}
	return ss, nil
}

func (b *Bridge) themeSet(tok handle.Token, msg string) (*catalog.ThemeSet, error) {
	ts, err := b.themeSets.Get(tok)
	if err != nil {
		return nil, handleError(diag.ThemeSetNullPointer, msg, err)
	}
	return ts, nil
}

// LastErrorLength returns the length of the pending message of thread tid
// plus one for the terminator, or 0 when nothing is pending.
func (b *Bridge) LastErrorLength(tid uint64) int32 {
	return int32(b.errs.Len(tid))
}

// LastErrorMessage drains the pending message of thread tid into buf.
// See diag.Sink.DrainInto for the return values.
func (b *Bridge) LastErrorMessage(tid uint64, buf unsafe.Pointer, capacity int32) int32 {
	return b.errs.DrainInto(tid, buf, capacity)
}

// ReleaseThreadErrors drops the sink of thread tid and any error in it.
func (b *Bridge) ReleaseThreadErrors(tid uint64) {
	b.errs.Close(tid)
}

// PendingErrors returns how many threads hold an undrained error.
func (b *Bridge) PendingErrors() int {
	return b.errs.Pending()
}

// WriteVersion writes Version, NUL-terminated, into buf.
func (b *Bridge) WriteVersion(tid uint64, buf unsafe.Pointer, capacity int32) int32 {
	return b.run(tid, "hlbridge_version", func() (int32, error) {
		return write(buf, capacity, Version, cbuf.Terminated)
	})
}
