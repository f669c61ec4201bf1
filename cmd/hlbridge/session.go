package main

import (
	"errors"
	"strings"
	"unsafe"

	"github.com/codefionn/hlbridge/internal/bridge"
	"github.com/codefionn/hlbridge/internal/consts"
	"github.com/codefionn/hlbridge/internal/diag"
	"github.com/codefionn/hlbridge/internal/handle"
	"github.com/codefionn/hlbridge/internal/render"
)

// The CLI is single threaded, so every call shares one error sink.
const cliThread uint64 = 1

// session drives the bridge the way a foreign caller does: through raw
// buffers, integer codes and the last error channel.
type session struct {
	b  *bridge.Bridge
	ss handle.Token
	ts handle.Token
}

func openSession(opts render.Options, newlines bool) *session {
	b := bridge.New(render.New(opts))
	return &session{
		b:  b,
		ss: b.LoadDefaultSyntaxSet(cliThread, newlines),
		ts: b.LoadDefaultThemeSet(cliThread),
	}
}

func (s *session) close() {
	s.b.ReleaseSyntaxSet(s.ss)
	s.b.ReleaseThemeSet(s.ts)
	s.b.ReleaseThreadErrors(cliThread)
}

// call runs op with a Go-allocated buffer, growing it while the bridge
// reports BufferTooSmall.
func (s *session) call(op func(buf unsafe.Pointer, capacity int32) int32) (string, error) {
	size := consts.BufferSize64KB
	for {
		buf := make([]byte, size)
		n := op(unsafe.Pointer(&buf[0]), int32(size))
		if n >= 0 {
			return string(buf[:n]), nil
		}

		err := s.lastError(diag.Code(n))
		if diag.Code(n) == diag.BufferTooSmall && size < consts.BufferSize10MB {
			size *= 4
			continue
		}
		return "", err
	}
}

// lastError collects the message parked for code.
func (s *session) lastError(code diag.Code) error {
	n := s.b.LastErrorLength(cliThread)
	if n <= 0 {
		return diag.New(code, code.String())
	}
	buf := make([]byte, n)
	got := s.b.LastErrorMessage(cliThread, unsafe.Pointer(&buf[0]), n)
	if got < 0 {
		return diag.New(code, code.String())
	}
	return diag.New(code, string(buf[:got]))
}

var errEmbeddedNUL = errors.New("argument contains a NUL byte")

// cstring returns a NUL-terminated copy of v.
func cstring(v string) (unsafe.Pointer, error) {
	if strings.IndexByte(v, 0) >= 0 {
		return nil, errEmbeddedNUL
	}
	b := append([]byte(v), 0)
	return unsafe.Pointer(&b[0]), nil
}

func (s *session) syntaxes() ([]string, error) {
	out, err := s.call(func(buf unsafe.Pointer, capacity int32) int32 {
		return s.b.FindAllSyntaxes(cliThread, buf, capacity, s.ss)
	})
	if err != nil {
		return nil, err
	}
	return strings.Split(out, "\n"), nil
}

func (s *session) themes() ([]string, error) {
	out, err := s.call(func(buf unsafe.Pointer, capacity int32) int32 {
		return s.b.FindAllThemes(cliThread, buf, capacity, s.ts)
	})
	if err != nil {
		return nil, err
	}
	return strings.Split(out, "\n"), nil
}

func (s *session) byExtension(ext string) (string, error) {
	p, err := cstring(ext)
	if err != nil {
		return "", err
	}
	return s.call(func(buf unsafe.Pointer, capacity int32) int32 {
		return s.b.FindSyntaxByExtension(cliThread, buf, capacity, s.ss, p)
	})
}

func (s *session) byToken(token string) (string, error) {
	p, err := cstring(token)
	if err != nil {
		return "", err
	}
	return s.call(func(buf unsafe.Pointer, capacity int32) int32 {
		return s.b.FindSyntaxByToken(cliThread, buf, capacity, s.ss, p)
	})
}

func (s *session) highlight(source, syntax, theme string) (string, error) {
	src, err := cstring(source)
	if err != nil {
		return "", err
	}
	sn, err := cstring(syntax)
	if err != nil {
		return "", err
	}
	tn, err := cstring(theme)
	if err != nil {
		return "", err
	}
	return s.call(func(buf unsafe.Pointer, capacity int32) int32 {
		return s.b.HighlightToHTML(cliThread, buf, capacity, src, s.ss, sn, s.ts, tn)
	})
}

func (s *session) version() (string, error) {
	return s.call(func(buf unsafe.Pointer, capacity int32) int32 {
		return s.b.WriteVersion(cliThread, buf, capacity)
	})
}
