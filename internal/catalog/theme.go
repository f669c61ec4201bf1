package catalog

import (
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Theme is one named color scheme.
type Theme struct {
	Name  string
	style *chroma.Style
}

// Style returns the chroma style backing t.
func (t *Theme) Style() *chroma.Style { return t.style }

// ThemeSet is a loaded theme catalog, keyed and listed by sorted name.
type ThemeSet struct {
	names  []string
	byName map[string]*Theme
}

// LoadDefaultThemes snapshots every style compiled into chroma.
func LoadDefaultThemes() *ThemeSet {
	return NewThemeSet(styles.Registry)
}

// NewThemeSet builds a catalog from a name-to-style map.
func NewThemeSet(registry map[string]*chroma.Style) *ThemeSet {
	ts := &ThemeSet{
		names:  make([]string, 0, len(registry)),
		byName: make(map[string]*Theme, len(registry)),
	}
	for name, style := range registry {
		if style == nil {
			continue
		}
		ts.names = append(ts.names, name)
		ts.byName[name] = &Theme{Name: name, style: style}
	}
	sort.Strings(ts.names)
	return ts
}

// Len returns the number of themes.
func (ts *ThemeSet) Len() int { return len(ts.names) }

// Names returns the theme names in sorted order.
func (ts *ThemeSet) Names() []string {
	return append([]string(nil), ts.names...)
}

// FindByName returns the theme registered under exactly name.
func (ts *ThemeSet) FindByName(name string) (*Theme, bool) {
	t, ok := ts.byName[name]
	return t, ok
}
