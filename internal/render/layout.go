package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// doc is a rendered value before line breaking: either a leaf or a
// bracketed list of items.
type doc struct {
	leaf  string
	open  string
	close string
	items []item

	composite bool
	flatText  *string
}

// item is one element of a composite: a prefix ("X: ", "\"k\": ") and a value.
type item struct {
	prefix string
	val    *doc
}

func leaf(s string) *doc {
	return &doc{leaf: s}
}

// flat renders d on one line, except where a leaf itself spans lines.
func (d *doc) flat() string {
	if !d.composite {
		return d.leaf
	}
	if d.flatText != nil {
		return *d.flatText
	}
	var b strings.Builder
	b.WriteString(d.open)
	for i, it := range d.items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(it.prefix)
		b.WriteString(it.val.flat())
	}
	b.WriteString(d.close)
	s := b.String()
	d.flatText = &s
	return s
}

// minWidth keeps deeply nested values from breaking every container.
const minWidth = 20

// layout breaks d into lines. A composite stays on one line when its flat
// form has no newline and fits the width left at depth; otherwise each item
// goes on its own line, indented one level, with a trailing comma.
func (d *doc) layout(width, indent, depth int) string {
	if !d.composite {
		return d.leaf
	}

	f := d.flat()
	avail := width - depth*indent
	if avail < minWidth {
		avail = minWidth
	}
	if len(d.items) == 0 || (!strings.Contains(f, "\n") && runewidth.StringWidth(f) <= avail) {
		return f
	}

	pad := strings.Repeat(" ", indent)
	var b strings.Builder
	b.WriteString(d.open)
	b.WriteByte('\n')
	for _, it := range d.items {
		b.WriteString(indentLines(it.prefix+it.val.layout(width, indent, depth+1), pad))
		b.WriteString(",\n")
	}
	b.WriteString(d.close)
	return b.String()
}

// indentLines prefixes every line of s with pad.
func indentLines(s, pad string) string {
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
