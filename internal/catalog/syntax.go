// Package catalog snapshots chroma's lexer and style registries into
// immutable collections that can be looked up by name, file extension or
// markdown fence token.
package catalog

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Syntax is one language definition.
type Syntax struct {
	Name      string
	Aliases   []string
	Filenames []string
	MimeTypes []string
	priority  float32
	lexer     chroma.Lexer
}

// Lexer returns the chroma lexer backing s.
func (s *Syntax) Lexer() chroma.Lexer { return s.lexer }

func newSyntax(l chroma.Lexer) *Syntax {
	cfg := l.Config()
	p := cfg.Priority
	if p == 0 {
		p = 1
	}
	return &Syntax{
		Name:      cfg.Name,
		Aliases:   append([]string(nil), cfg.Aliases...),
		Filenames: append([]string(nil), cfg.Filenames...),
		MimeTypes: append([]string(nil), cfg.MimeTypes...),
		priority:  p,
		lexer:     l,
	}
}

// SyntaxSet is a loaded syntax catalog. It is never modified after
// construction and may be read from any number of goroutines.
type SyntaxSet struct {
	newlines bool
	syntaxes []*Syntax
	byName   map[string]*Syntax
}

// LoadDefaultSyntaxes snapshots every lexer compiled into chroma.
//
// With newlines set, sources are normalised to LF line endings and given a
// trailing newline before they are tokenised.
func LoadDefaultSyntaxes(newlines bool) *SyntaxSet {
	return NewSyntaxSet(lexers.GlobalLexerRegistry.Lexers, newlines)
}

// NewSyntaxSet builds a catalog from ls, keeping their order.
func NewSyntaxSet(ls []chroma.Lexer, newlines bool) *SyntaxSet {
	ss := &SyntaxSet{
		newlines: newlines,
		syntaxes: make([]*Syntax, 0, len(ls)),
		byName:   make(map[string]*Syntax, len(ls)),
	}
	for _, l := range ls {
		if l == nil || l.Config() == nil {
			continue
		}
		s := newSyntax(l)
		ss.syntaxes = append(ss.syntaxes, s)
		if _, dup := ss.byName[s.Name]; !dup {
			ss.byName[s.Name] = s
		}
	}
	return ss
}

// Newlines reports which source preparation the catalog was loaded with.
func (ss *SyntaxSet) Newlines() bool { return ss.newlines }

// Len returns the number of syntaxes.
func (ss *SyntaxSet) Len() int { return len(ss.syntaxes) }

// Syntaxes returns the entries in catalog order. The slice must not be modified.
func (ss *SyntaxSet) Syntaxes() []*Syntax { return ss.syntaxes }

// Names returns the display names in catalog order.
func (ss *SyntaxSet) Names() []string {
	names := make([]string, len(ss.syntaxes))
	for i, s := range ss.syntaxes {
		names[i] = s.Name
	}
	return names
}

// FindByName returns the syntax whose display name is exactly name.
func (ss *SyntaxSet) FindByName(name string) (*Syntax, bool) {
	s, ok := ss.byName[name]
	return s, ok
}

// FindByExtension returns the syntax claiming files with extension ext
// ("rs", "py"; a leading dot is ignored). Literal "*.ext" globs and bare file
// names are matched first, case-insensitively; wildcard globs such as
// "*.[ch]" are tried only when nothing matched literally. Among several
// candidates the highest chroma priority wins, then catalog order.
func (ss *SyntaxSet) FindByExtension(ext string) (*Syntax, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return nil, false
	}

	literal := "*." + ext
	if s := ss.best(func(glob string) bool {
		glob = strings.ToLower(glob)
		return glob == literal || glob == ext
	}); s != nil {
		return s, true
	}

	file := "file." + ext
	if s := ss.best(func(glob string) bool {
		ok, err := filepath.Match(strings.ToLower(glob), file)
		return err == nil && ok
	}); s != nil {
		return s, true
	}
	return nil, false
}

// FindByToken resolves a fence token such as "rust" or "py": first as an
// extension, then as a display name, then as an alias, all ignoring case.
func (ss *SyntaxSet) FindByToken(token string) (*Syntax, bool) {
	if s, ok := ss.FindByExtension(token); ok {
		return s, true
	}
	if token == "" {
		return nil, false
	}
	for _, s := range ss.syntaxes {
		if strings.EqualFold(s.Name, token) {
			return s, true
		}
	}
	for _, s := range ss.syntaxes {
		for _, alias := range s.Aliases {
			if strings.EqualFold(alias, token) {
				return s, true
			}
		}
	}
	return nil, false
}

func (ss *SyntaxSet) best(match func(glob string) bool) *Syntax {
	var candidates []*Syntax
	for _, s := range ss.syntaxes {
		for _, glob := range s.Filenames {
			if match(glob) {
				candidates = append(candidates, s)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority > candidates[j].priority
	})
	return candidates[0]
}
