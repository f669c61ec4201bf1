package catalog

import (
	"sort"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLexer(name string, priority float32, aliases []string, filenames ...string) chroma.Lexer {
	return chroma.MustNewLexer(&chroma.Config{
		Name:      name,
		Aliases:   aliases,
		Filenames: filenames,
		Priority:  priority,
	}, func() chroma.Rules {
		return chroma.Rules{"root": {{Pattern: `(?s).+`, Type: chroma.Text}}}
	})
}

func testSet() *SyntaxSet {
	return NewSyntaxSet([]chroma.Lexer{
		testLexer("Zeta", 0, []string{"z"}, "*.zeta"),
		testLexer("C", 0, nil, "*.c", "*.h"),
		testLexer("Objective-C", 0.05, []string{"objc"}, "*.m", "*.h"),
		testLexer("C++", 0.1, []string{"cpp"}, "*.cpp", "*.[ch]pp", "*.h"),
		testLexer("Makefile", 0, []string{"make"}, "Makefile", "*.mk"),
	}, true)
}

func TestSyntaxSetKeepsOrder(t *testing.T) {
	ss := testSet()
	assert.Equal(t, []string{"Zeta", "C", "Objective-C", "C++", "Makefile"}, ss.Names())
	assert.Equal(t, 5, ss.Len())
	assert.Len(t, ss.Syntaxes(), 5)
	assert.Equal(t, "Objective-C", ss.Syntaxes()[2].Name)
	assert.True(t, ss.Newlines())
}

func TestFindByName(t *testing.T) {
	ss := testSet()

	s, ok := ss.FindByName("C++")
	require.True(t, ok)
	assert.Equal(t, "C++", s.Name)
	assert.NotNil(t, s.Lexer())

	_, ok = ss.FindByName("c++")
	assert.False(t, ok, "name lookup is exact")
}

func TestFindByExtension(t *testing.T) {
	ss := testSet()

	tests := []struct {
		ext  string
		want string
	}{
		{"zeta", "Zeta"},
		{"ZETA", "Zeta"},
		{".c", "C"},
		{"h", "C"},
		{"cpp", "C++"},
		{"hpp", "C++"},
		{"mk", "Makefile"},
		{"makefile", "Makefile"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			s, ok := ss.FindByExtension(tt.ext)
			require.True(t, ok)
			assert.Equal(t, tt.want, s.Name)
		})
	}

	for _, ext := range []string{"", "zzz_no_such_ext", "cp"} {
		_, ok := ss.FindByExtension(ext)
		assert.False(t, ok, ext)
	}
}

func TestFindByToken(t *testing.T) {
	ss := testSet()

	tests := []struct {
		token string
		want  string
	}{
		{"cpp", "C++"},
		{"objective-c", "Objective-C"},
		{"objc", "Objective-C"},
		{"MAKE", "Makefile"},
		{"z", "Zeta"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			s, ok := ss.FindByToken(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.want, s.Name)
		})
	}

	_, ok := ss.FindByToken("")
	assert.False(t, ok)
	_, ok = ss.FindByToken("no-such-language")
	assert.False(t, ok)
}

func TestDefaultSyntaxes(t *testing.T) {
	ss := LoadDefaultSyntaxes(false)
	require.Greater(t, ss.Len(), 100)
	assert.False(t, ss.Newlines())

	_, ok := ss.FindByName("plaintext")
	assert.True(t, ok)

	for ext, want := range map[string]string{"go": "Go", "rs": "Rust", "py": "Python"} {
		s, ok := ss.FindByExtension(ext)
		require.True(t, ok, ext)
		assert.Equal(t, want, s.Name)
	}

	s, ok := ss.FindByToken("golang")
	require.True(t, ok)
	assert.Equal(t, "Go", s.Name)

	assert.Equal(t, ss.Names(), LoadDefaultSyntaxes(true).Names())
}

func TestThemeSet(t *testing.T) {
	ts := NewThemeSet(map[string]*chroma.Style{
		"zenburn": chroma.MustNewStyle("zenburn", chroma.StyleEntries{chroma.Background: "#3f3f3f"}),
		"abap":    chroma.MustNewStyle("abap", chroma.StyleEntries{chroma.Background: "#ffffff"}),
		"broken":  nil,
	})

	assert.Equal(t, []string{"abap", "zenburn"}, ts.Names())
	assert.Equal(t, 2, ts.Len())

	th, ok := ts.FindByName("zenburn")
	require.True(t, ok)
	assert.Equal(t, "zenburn", th.Name)
	assert.NotNil(t, th.Style())

	_, ok = ts.FindByName("Zenburn")
	assert.False(t, ok)
}

func TestDefaultThemes(t *testing.T) {
	ts := LoadDefaultThemes()
	names := ts.Names()
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))

	_, ok := ts.FindByName("monokai")
	assert.True(t, ok)

	names[0] = "mutated"
	assert.NotEqual(t, "mutated", ts.Names()[0])
}
