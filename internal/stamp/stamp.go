// Package stamp rewrites instrumentation calls between their implicit form,
// which locates itself at run time, and their explicit form, which carries
// a literal dbg.Site.
package stamp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/coral-mesh/dbg/internal/callmatch"
	"github.com/coral-mesh/dbg/internal/entry"
	"github.com/coral-mesh/dbg/internal/source"
)

// edit replaces text[start:end].
type edit struct {
	start int
	end   int
	text  string
}

func (e edit) delta() int {
	return len(e.text) - (e.end - e.start)
}

// Result is the outcome of rewriting one file.
type Result struct {
	Path   string
	Output []byte
	// Calls is the number of calls rewritten.
	Calls int
}

// Changed reports whether any call was rewritten.
func (r Result) Changed() bool {
	return r.Calls > 0
}

// Stamp rewrites Dbg and Val calls of file into At and ValAt with a Site
// recording name as the file, the call position in the rewritten text and
// the source text of every argument. Calls unpacking a slice are left
// alone.
func Stamp(name string, file *source.File, target source.Target) (Result, error) {
	idx, err := source.Parse(file, target)
	if err != nil {
		return Result{}, err
	}

	calls := make([]source.CallNode, len(idx.Calls))
	copy(calls, idx.Calls)
	sort.Slice(calls, func(i, j int) bool {
		return calls[i].Span.Start < calls[j].Span.Start
	})

	var edits []edit
	count := 0
	for _, c := range calls {
		to, ok := entry.Stamped(c.Name)
		if !ok || c.Spread {
			continue
		}
		exprs, err := callmatch.Extract(file.Text, c)
		if err != nil {
			return Result{}, fmt.Errorf("%s:%d:%d: %w", name, c.Line, c.Col, err)
		}

		// Earlier edits on the same line move the call to the right,
		// including an insertion right at its start.
		col := c.Col
		lineStart, _ := file.Offset(c.Line, 1)
		for _, e := range edits {
			if e.start >= lineStart && e.start <= c.Span.Start {
				col += e.delta()
			}
		}

		site := siteLiteral(c.Qualifier, name, c.Line, col, exprs)
		switch {
		case len(c.Args) == 0:
		case c.Lparen+1 < len(file.Text) && file.Text[c.Lparen+1] == '\n':
			site += ","
		default:
			site += ", "
		}
		edits = append(edits,
			edit{start: c.NameSpan.Start, end: c.NameSpan.End, text: to},
			edit{start: c.Lparen + 1, end: c.Lparen + 1, text: site},
		)
		count++
	}

	return Result{Path: file.Path, Output: apply(file.Text, edits), Calls: count}, nil
}

// Unstamp reverses Stamp: At and ValAt calls whose site is a Site literal
// become Dbg and Val again.
func Unstamp(file *source.File, target source.Target) (Result, error) {
	idx, err := source.Parse(file, target)
	if err != nil {
		return Result{}, err
	}

	var edits []edit
	count := 0
	for _, c := range idx.Calls {
		to, ok := entry.Unstamped(c.Name)
		if !ok || c.Site == nil {
			continue
		}
		text, ok := c.Site.Text(file.Text)
		if !ok || !strings.HasPrefix(text, qualify(c.Qualifier, "Site{")) {
			continue
		}

		edits = append(edits,
			edit{start: c.NameSpan.Start, end: c.NameSpan.End, text: to},
			edit{start: c.Site.Start, end: separatorEnd(file.Text, c.Site.End)},
		)
		count++
	}

	return Result{Path: file.Path, Output: apply(file.Text, edits), Calls: count}, nil
}

// separatorEnd returns the end of the comma following an argument ending
// at off, together with the blanks after it when the line goes on.
func separatorEnd(src []byte, off int) int {
	blanks := func(i int) int {
		for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
			i++
		}
		return i
	}
	i := blanks(off)
	if i >= len(src) || src[i] != ',' {
		return off
	}
	i++
	if j := blanks(i); j < len(src) && src[j] != '\n' {
		return j
	}
	return i
}

func siteLiteral(qualifier, file string, line, col int, exprs []string) string {
	quoted := make([]string, len(exprs))
	for i, e := range exprs {
		quoted[i] = strconv.Quote(e)
	}
	return fmt.Sprintf("%s{File: %s, Line: %d, Col: %d, Exprs: []string{%s}}",
		qualify(qualifier, "Site"), strconv.Quote(file), line, col, strings.Join(quoted, ", "))
}

func qualify(qualifier, name string) string {
	if qualifier == "" {
		return name
	}
	return qualifier + "." + name
}

// apply performs non-overlapping edits, last first so earlier offsets hold.
// At equal offsets a replacement goes before an insertion, which then lands
// in front of it.
func apply(src []byte, edits []edit) []byte {
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start > sorted[j].start
		}
		return sorted[i].end > sorted[j].end
	})

	out := make([]byte, len(src))
	copy(out, src)
	for _, e := range sorted {
		tail := append([]byte(e.text), out[e.end:]...)
		out = append(out[:e.start], tail...)
	}
	return out
}
