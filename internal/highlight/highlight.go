// Package highlight colors Go source fragments for terminal output using
// chroma palettes.
package highlight

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/zeebo/xxh3"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
	"github.com/coral-mesh/dbg/internal/lru"
)

// cacheSize bounds the number of memoized fragments per highlighter.
const cacheSize = 512

// kind separates cache entries of the same text colored differently.
type kind byte

const (
	kindCode kind = iota
	kindComment
)

// Highlighter colors text with one palette. It is safe for concurrent use.
type Highlighter struct {
	name      string
	style     *chroma.Style
	lexer     chroma.Lexer
	formatter chroma.Formatter
	cache     *lru.Cache[uint64, string]

	onError func(error)
	report  sync.Once
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithErrorHandler sets the function told about the first fragment that
// could not be colored.
func WithErrorHandler(fn func(error)) Option {
	return func(h *Highlighter) {
		h.onError = fn
	}
}

// New returns a highlighter for the named palette, or ErrStyleUnknown.
func New(name string, opts ...Option) (*Highlighter, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dbgerrors.ErrStyleUnknown, name)
	}
	h := &Highlighter{
		name:      name,
		style:     style,
		lexer:     chroma.Coalesce(lexers.Go),
		formatter: formatters.TTY256,
		cache:     lru.New[uint64, string](cacheSize),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Styles lists the available palette names in sorted order.
func Styles() []string {
	return styles.Names()
}

// Valid reports whether name is a known palette.
func Valid(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// Name returns the palette name.
func (h *Highlighter) Name() string {
	return h.name
}

// Code colors Go source text. Text that fails to tokenize is returned
// unchanged and the first such failure goes to the error handler.
func (h *Highlighter) Code(text string) string {
	return h.cached(kindCode, text, func() (string, error) {
		it, err := h.lexer.Tokenise(nil, text)
		if err != nil {
			return "", err
		}
		return h.format(it.Tokens(), text)
	})
}

// Comment colors text as a single-line comment.
func (h *Highlighter) Comment(text string) string {
	return h.cached(kindComment, text, func() (string, error) {
		return h.format([]chroma.Token{{Type: chroma.CommentSingle, Value: text}}, text)
	})
}

func (h *Highlighter) cached(k kind, text string, compute func() (string, error)) string {
	if text == "" {
		return ""
	}
	key := xxh3.HashString(string(rune('0'+k)) + "\x00" + text)
	return h.cache.GetOrCompute(key, func() string {
		out, err := compute()
		if err != nil {
			h.fail(fmt.Errorf("highlight %s: %w", h.name, err))
			return text
		}
		return out
	})
}

func (h *Highlighter) fail(err error) {
	if h.onError == nil {
		return
	}
	h.report.Do(func() { h.onError(err) })
}

// format writes tokens through the terminal formatter. The Go lexer
// appends a newline the input may not have had; it is dropped again.
func (h *Highlighter) format(tokens []chroma.Token, text string) (string, error) {
	if !strings.HasSuffix(text, "\n") && len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		last.Value = strings.TrimSuffix(last.Value, "\n")
		if last.Value == "" {
			tokens = tokens[:len(tokens)-1]
		}
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, chroma.Literator(tokens...)); err != nil {
		return "", err
	}
	return b.String(), nil
}
