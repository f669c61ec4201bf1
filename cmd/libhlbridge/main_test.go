//go:build cgo

package main

import (
	"runtime"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/codefionn/hlbridge/internal/bridge"
	"github.com/codefionn/hlbridge/internal/diag"
)

// The helpers below let the tests pass Go memory to the exports without
// naming cgo types; P, N and H are inferred from the export's signature.

func withBuf[P ~*E, E any, N ~int32](b []byte, f func(P, N) N) int {
	return int(f(P(unsafe.Pointer(&b[0])), N(len(b))))
}

func withBufHandle[P ~*E, E any, N ~int32, H ~uint64](b []byte, h H, f func(P, N, H) N) int {
	return int(f(P(unsafe.Pointer(&b[0])), N(len(b)), h))
}

func withBufHandleString[P ~*E, E any, N ~int32, H ~uint64](b []byte, h H, s string, f func(P, N, H, P) N) int {
	cs := append([]byte(s), 0)
	return int(f(P(unsafe.Pointer(&b[0])), N(len(b)), h, P(unsafe.Pointer(&cs[0]))))
}

// onThread runs fn on its own OS thread. The goroutine exits while still
// locked, so the runtime terminates the thread afterwards.
func onThread(fn func()) {
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer close(done)
		fn()
	}()
	<-done
}

func lastError() string {
	buf := make([]byte, 256)
	n := withBuf(buf, last_error_message)
	if n <= 0 {
		return ""
	}
	return string(buf[:n])
}

func TestLastErrorRoundTrip(t *testing.T) {
	onThread(func() {
		assert.Equal(t, 0, int(last_error_length()))

		rc := find_all_themes(nil, 0, 0)
		assert.Equal(t, int(diag.BufferNullPointer), int(rc))
		assert.Equal(t, len("Null buffer")+1, int(last_error_length()))

		buf := make([]byte, 64)
		n := withBuf(buf, last_error_message)
		assert.Equal(t, len("Null buffer"), n)
		assert.Equal(t, "Null buffer", string(buf[:n]))

		assert.Equal(t, 0, int(last_error_length()))
		assert.Equal(t, 0, withBuf(buf, last_error_message))
	})
}

func TestReleaseThreadErrors(t *testing.T) {
	onThread(func() {
		find_all_syntaxes(nil, 0, 0)
		assert.NotZero(t, int(last_error_length()))
		release_thread_errors()
		assert.Equal(t, 0, int(last_error_length()))
	})
}

func TestCatalogExports(t *testing.T) {
	onThread(func() {
		buf := make([]byte, 64*1024)

		ts := load_default_theme_set()
		assert.NotZero(t, uint64(ts))
		n := withBufHandle(buf, ts, find_all_themes)
		if !assert.Greater(t, n, 0, lastError()) {
			return
		}
		assert.Contains(t, strings.Split(string(buf[:n]), "\n"), "monokai")

		ss := load_default_syntax_set(false)
		assert.NotZero(t, uint64(ss))
		n = withBufHandle(buf, ss, find_all_syntaxes)
		if !assert.Greater(t, n, 0, lastError()) {
			return
		}
		assert.Contains(t, strings.Split(string(buf[:n]), "\n"), "Go")

		n = withBufHandleString(buf, ss, "rs", find_syntax_by_extension)
		if assert.Greater(t, n, 0, lastError()) {
			assert.Equal(t, "Rust", string(buf[:n]))
			assert.Equal(t, byte(0), buf[n])
		}

		n = withBufHandleString(buf, ss, "golang", find_syntax_by_token)
		if assert.Greater(t, n, 0, lastError()) {
			assert.Equal(t, "Go", string(buf[:n]))
		}

		n = withBufHandleString(buf, ss, "zzz_no_such_ext", find_syntax_by_extension)
		assert.Equal(t, int(diag.SyntaxNotFound), n)
		assert.Equal(t, "Syntax not found", lastError())

		n = withBuf(buf, hlbridge_version)
		if assert.Greater(t, n, 0, lastError()) {
			assert.Equal(t, bridge.Version, string(buf[:n]))
		}

		release_theme_set(ts)
		release_syntax_set(ss)
		assert.Equal(t, int(diag.ThemeSetNullPointer), withBufHandle(buf, ts, find_all_themes))
		assert.Equal(t, "Null pointer", lastError())
		assert.Equal(t, int(diag.SyntaxSetNullPointer), withBufHandle(buf, ss, find_all_syntaxes))
		assert.Equal(t, "Null pointer", lastError())
	})
}

func TestHighlightExport(t *testing.T) {
	onThread(func() {
		ss := load_default_syntax_set(true)
		ts := load_default_theme_set()
		defer release_syntax_set(ss)
		defer release_theme_set(ts)

		src := append([]byte("fn main() {}"), 0)
		syntax := append([]byte("Rust"), 0)
		theme := append([]byte("monokai"), 0)
		buf := make([]byte, 64*1024)

		n := highlightInto(buf, src, ss, syntax, ts, theme, highlight_to_html)
		if !assert.Greater(t, n, 0, lastError()) {
			return
		}
		assert.Contains(t, string(buf[:n]), "<pre")
		assert.Equal(t, byte(0), buf[n])

		theme = append([]byte("no-such-theme"), 0)
		n = highlightInto(buf, src, ss, syntax, ts, theme, highlight_to_html)
		assert.Equal(t, int(diag.ThemeNotFound), n)
		assert.Equal(t, "Theme not found", lastError())
	})
}

func highlightInto[P ~*E, E any, N ~int32, H ~uint64](buf, src []byte, ss H, syntax []byte, ts H, theme []byte, f func(P, N, P, H, P, H, P) N) int {
	p := func(b []byte) P { return P(unsafe.Pointer(&b[0])) }
	return int(f(p(buf), N(len(buf)), p(src), ss, p(syntax), ts, p(theme)))
}

func TestErrorsStayOnTheirThread(t *testing.T) {
	recorded := make(chan uint64)
	checked := make(chan struct{})
	done := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer close(done)

		find_all_themes(nil, 0, 0)
		recorded <- tid()
		<-checked
		assert.Equal(t, "Null buffer", lastError())
	}()

	onThread(func() {
		other := <-recorded
		assert.NotEqual(t, other, tid())
		assert.Equal(t, 0, int(last_error_length()))

		buf := make([]byte, 64)
		n := withBufHandleString(buf, 0, "rs", find_syntax_by_extension)
		assert.Equal(t, int(diag.SyntaxSetNullPointer), n)
		close(checked)
		assert.Equal(t, "Null SyntaxSet", lastError())
	})
	<-done
}

func TestExitedThreadErrorsAreDropped(t *testing.T) {
	seen := make(map[uint64]bool)

	// These threads exit with an error nobody collected.
	for i := 0; i < 20; i++ {
		onThread(func() {
			seen[tid()] = true
			find_all_themes(nil, 0, 0)
		})
	}

	for i := 0; i < 200; i++ {
		onThread(func() {
			id := tid()
			assert.False(t, seen[id], "thread id %d handed out twice", id)
			seen[id] = true
			assert.Equal(t, 0, int(last_error_length()), "thread %d", id)
		})
	}

	if runtime.GOOS == "windows" {
		return
	}
	assert.Eventually(t, func() bool {
		// Any call reaps the threads that have exited so far.
		onThread(func() { tid() })
		return lib.PendingErrors() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
