package bridge

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/codefionn/hlbridge/internal/catalog"
	"github.com/codefionn/hlbridge/internal/cbuf"
	"github.com/codefionn/hlbridge/internal/diag"
	"github.com/codefionn/hlbridge/internal/handle"
	"github.com/codefionn/hlbridge/internal/logger"
)

// LoadDefaultThemeSet loads every built-in theme and returns its handle.
// It returns handle.Null only if loading panicked.
func (b *Bridge) LoadDefaultThemeSet(tid uint64) handle.Token {
	var tok handle.Token
	b.run(tid, "load_default_theme_set", func() (int32, error) {
		tok = b.themeSets.Insert(catalog.LoadDefaultThemes())
		return 0, nil
	})
	return tok
}

// LoadDefaultSyntaxSet loads every built-in syntax and returns its handle.
// With newlines set, sources highlighted through the handle are normalised
// to LF line endings with a trailing newline.
func (b *Bridge) LoadDefaultSyntaxSet(tid uint64, newlines bool) handle.Token {
	var tok handle.Token
	b.run(tid, "load_default_syntax_set", func() (int32, error) {
		tok = b.syntaxSets.Insert(catalog.LoadDefaultSyntaxes(newlines))
		return 0, nil
	})
	return tok
}

// ReleaseThemeSet frees a theme catalog handle. Null is ignored; a stale or
// foreign token is logged and otherwise ignored.
func (b *Bridge) ReleaseThemeSet(tok handle.Token) {
	release(b.log, b.themeSets, tok, "theme set")
}

// ReleaseSyntaxSet frees a syntax catalog handle. Null is ignored; a stale
// or foreign token is logged and otherwise ignored.
func (b *Bridge) ReleaseSyntaxSet(tok handle.Token) {
	release(b.log, b.syntaxSets, tok, "syntax set")
}

func release[T any](log *logger.Logger, tbl *handle.Table[T], tok handle.Token, what string) {
	if tok == handle.Null {
		return
	}
	if _, err := tbl.Remove(tok); err != nil {
		log.Warn("Ignoring release of %s: %s", what, err)
	}
}

// FindAllThemes writes the theme names, sorted and joined by "\n", into buf
// without a terminator and returns their byte length.
func (b *Bridge) FindAllThemes(tid uint64, buf unsafe.Pointer, capacity int32, tok handle.Token) int32 {
	return b.run(tid, "find_all_themes", func() (int32, error) {
		if buf == nil {
			return 0, nullBuffer(diag.BufferNullPointer)
		}
		ts, err := b.themeSet(tok, "Null pointer")
		if err != nil {
			return 0, err
		}
		return write(buf, capacity, strings.Join(ts.Names(), "\n"), cbuf.Exact)
	})
}

// FindAllSyntaxes writes the syntax names, in catalog order and joined by
// "\n", into buf without a terminator and returns their byte length.
func (b *Bridge) FindAllSyntaxes(tid uint64, buf unsafe.Pointer, capacity int32, tok handle.Token) int32 {
	return b.run(tid, "find_all_syntaxes", func() (int32, error) {
		if buf == nil {
			return 0, nullBuffer(diag.BufferNullPointer)
		}
		ss, err := b.syntaxSet(tok, "Null pointer")
		if err != nil {
			return 0, err
		}
		return write(buf, capacity, strings.Join(ss.Names(), "\n"), cbuf.Exact)
	})
}

// FindSyntaxByExtension writes the name of the syntax claiming the file
// extension at ext, NUL-terminated, into buf.
func (b *Bridge) FindSyntaxByExtension(tid uint64, buf unsafe.Pointer, capacity int32, tok handle.Token, ext unsafe.Pointer) int32 {
	return b.run(tid, "find_syntax_by_extension", func() (int32, error) {
		return b.findSyntax(buf, capacity, tok, ext, "extension", (*catalog.SyntaxSet).FindByExtension)
	})
}

// FindSyntaxByToken writes the name of the syntax matching the fence token
// at token, NUL-terminated, into buf.
func (b *Bridge) FindSyntaxByToken(tid uint64, buf unsafe.Pointer, capacity int32, tok handle.Token, token unsafe.Pointer) int32 {
	return b.run(tid, "find_syntax_by_token", func() (int32, error) {
		return b.findSyntax(buf, capacity, tok, token, "token", (*catalog.SyntaxSet).FindByToken)
	})
}

type finder func(ss *catalog.SyntaxSet, key string) (*catalog.Syntax, bool)

func (b *Bridge) findSyntax(buf unsafe.Pointer, capacity int32, tok handle.Token, key unsafe.Pointer, what string, find finder) (int32, error) {
	if buf == nil {
		return 0, nullBuffer(diag.BufferNullPointer)
	}
	ss, err := b.syntaxSet(tok, "Null SyntaxSet")
	if err != nil {
		return 0, err
	}
	k, err := cbuf.DecodeUTF8(key)
	if err != nil {
		return 0, decodeError(what, err)
	}
	s, ok := find(ss, k)
	if !ok {
		return 0, diag.Wrap(diag.SyntaxNotFound, "Syntax not found", fmt.Errorf("no syntax for %s %q", what, k))
	}
	return write(buf, capacity, s.Name, cbuf.Terminated)
}

// HighlightToHTML renders the source at src with the syntax named by
// syntaxName from the syntax catalog ssTok and the theme named by themeName
// from the theme catalog tsTok, and writes the HTML fragment, NUL-terminated,
// into buf.
//
// Checks run strictly in order: buffer, syntax handle, theme handle, the
// three strings, syntax name, theme name, output size.
func (b *Bridge) HighlightToHTML(tid uint64, buf unsafe.Pointer, capacity int32, src unsafe.Pointer, ssTok handle.Token, syntaxName unsafe.Pointer, tsTok handle.Token, themeName unsafe.Pointer) int32 {
	return b.run(tid, "highlight_to_html", func() (int32, error) {
		if buf == nil {
			return 0, nullBuffer(diag.General)
		}
		ss, err := b.syntaxSet(ssTok, "Null pointer")
		if err != nil {
			return 0, err
		}
		ts, err := b.themeSet(tsTok, "Null pointer")
		if err != nil {
			return 0, err
		}

		source, err := cbuf.DecodeUTF8(src)
		if err != nil {
			return 0, decodeError("source", err)
		}
		sname, err := cbuf.DecodeUTF8(syntaxName)
		if err != nil {
			return 0, decodeError("syntax name", err)
		}
		tname, err := cbuf.DecodeUTF8(themeName)
		if err != nil {
			return 0, decodeError("theme name", err)
		}

		syntax, ok := ss.FindByName(sname)
		if !ok {
			return 0, diag.Wrap(diag.SyntaxNotFound, "Syntax not found", fmt.Errorf("no syntax named %q", sname))
		}
		theme, ok := ts.FindByName(tname)
		if !ok {
			return 0, diag.Wrap(diag.ThemeNotFound, "Theme not found", fmt.Errorf("no theme named %q", tname))
		}

		out, err := b.renderer.HTML(source, syntax, theme, ss.Newlines())
		if err != nil {
			return 0, diag.Wrap(diag.General, "Highlighting failed", err)
		}
		return write(buf, capacity, out, cbuf.Terminated)
	})
}
