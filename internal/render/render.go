// Package render turns source text into inline-styled HTML with chroma and
// memoises the result.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/codefionn/hlbridge/internal/catalog"
	"github.com/codefionn/hlbridge/internal/consts"
	"github.com/codefionn/hlbridge/internal/logger"
)

// Options configures a Renderer.
type Options struct {
	TabWidth    int
	LineNumbers bool

	// MaxEntries bounds the cache. Zero disables caching.
	MaxEntries int
	// TTL is how long a cached render stays valid. Zero keeps entries until
	// they are evicted by MaxEntries.
	TTL time.Duration
	// CleanupInterval starts go-cache's janitor goroutine when positive.
	CleanupInterval time.Duration
}

// DefaultOptions returns the options used when no configuration is loaded.
func DefaultOptions() Options {
	return Options{
		TabWidth:   consts.DefaultTabWidth,
		MaxEntries: consts.DefaultRenderCacheEntries,
		TTL:        consts.DefaultRenderCacheTTL,
	}
}

type entry struct {
	syntax   string
	theme    string
	newlines bool
	source   string
	html     string
}

// Renderer formats source with a given syntax and theme. It is safe for
// concurrent use.
type Renderer struct {
	opts      Options
	formatter *html.Formatter
	cache     *gocache.Cache
	log       *logger.Logger
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.TabWidth <= 0 {
		opts.TabWidth = consts.DefaultTabWidth
	}
	r := &Renderer{
		opts: opts,
		log:  logger.Global().WithPrefix("render"),
		formatter: html.New(
			html.WithClasses(false),
			html.Standalone(false),
			html.TabWidth(opts.TabWidth),
			html.WithLineNumbers(opts.LineNumbers),
		),
	}
	if opts.MaxEntries > 0 {
		ttl := opts.TTL
		if ttl <= 0 {
			ttl = gocache.NoExpiration
		}
		r.cache = gocache.New(ttl, opts.CleanupInterval)
	}
	return r
}

// HTML renders source as an HTML fragment styled inline with theme.
//
// With newlines set, CRLF and lone CR line endings become LF and a trailing
// newline is added when missing, matching a syntax catalog loaded for the
// newline variant.
func (r *Renderer) HTML(source string, syntax *catalog.Syntax, theme *catalog.Theme, newlines bool) (string, error) {
	if syntax == nil || syntax.Lexer() == nil {
		return "", errors.New("render: no lexer")
	}
	if theme == nil || theme.Style() == nil {
		return "", errors.New("render: no style")
	}

	if newlines {
		source = normalizeNewlines(source)
	}

	key := cacheKey(syntax.Name, theme.Name, newlines, source)
	if out, ok := r.lookup(key, syntax.Name, theme.Name, newlines, source); ok {
		return out, nil
	}

	it, err := chroma.Coalesce(syntax.Lexer()).Tokenise(&chroma.TokeniseOptions{
		State:    "root",
		EnsureLF: newlines,
	}, source)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", syntax.Name, err)
	}

	var sb strings.Builder
	if err := r.formatter.Format(&sb, theme.Style(), it); err != nil {
		return "", fmt.Errorf("format %s with %s: %w", syntax.Name, theme.Name, err)
	}
	out := sb.String()

	r.store(key, &entry{
		syntax:   syntax.Name,
		theme:    theme.Name,
		newlines: newlines,
		source:   source,
		html:     out,
	})
	return out, nil
}

// Len returns the number of cached renders, expired ones included.
func (r *Renderer) Len() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.ItemCount()
}

// Purge drops every cached render.
func (r *Renderer) Purge() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

func (r *Renderer) lookup(key, syntax, theme string, newlines bool, source string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	v, found := r.cache.Get(key)
	if !found {
		return "", false
	}
	e, ok := v.(*entry)
	if !ok {
		r.log.Error("cache: unexpected value type %T for key %s", v, key)
		return "", false
	}
	// Digest collision.
	if e.syntax != syntax || e.theme != theme || e.newlines != newlines || e.source != source {
		return "", false
	}
	r.log.Debug("cache hit: %s", key)
	return e.html, true
}

func (r *Renderer) store(key string, e *entry) {
	if r.cache == nil {
		return
	}
	if r.cache.ItemCount() >= r.opts.MaxEntries {
		r.cache.DeleteExpired()
		if n := r.cache.ItemCount(); n >= r.opts.MaxEntries {
			r.log.Debug("cache full (%d entries), flushing", n)
			r.cache.Flush()
		}
	}
	r.cache.SetDefault(key, e)
}

func cacheKey(syntax, theme string, newlines bool, source string) string {
	d := xxhash.New()
	_, _ = d.WriteString(syntax)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(theme)
	if newlines {
		_, _ = d.WriteString("\x00n\x00")
	} else {
		_, _ = d.WriteString("\x00-\x00")
	}
	_, _ = d.WriteString(source)
	return strconv.FormatUint(d.Sum64(), 16)
}

func normalizeNewlines(s string) string {
	if strings.ContainsRune(s, '\r') {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
