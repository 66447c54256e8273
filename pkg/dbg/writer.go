package dbg

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/coral-mesh/dbg/internal/callmatch"
	"github.com/coral-mesh/dbg/internal/highlight"
	"github.com/coral-mesh/dbg/internal/render"
)

// unknown replaces every field that could not be resolved.
const unknown = "<unknown>"

// outputMu serializes writes so lines of concurrent invocations never
// interleave.
var outputMu sync.Mutex

var workDir = sync.OnceValue(func() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
})

func emit(site *Site, values []any) {
	cfg, out, logger := std.snapshot()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug().Interface("panic", rec).Msg("Output skipped")
		}
	}()
	r := resolve(site, len(values), logger)

	var hl *highlight.Highlighter
	if cfg.UseColor(out) {
		hl = std.highlighter(cfg.Style)
	}

	tag := locationTag(r)
	if hl != nil {
		tag = hl.Comment(tag)
	}

	var b strings.Builder
	if len(values) == 0 {
		b.WriteString(tag)
		b.WriteByte('\n')
	}

	renderer := render.New(cfg.Indent)
	for i, v := range values {
		expr := unknown
		if r.exprs != nil {
			expr = callmatch.Display(r.exprs[i], cfg.Indent)
		}
		text, err := renderer.RenderErr(v)
		if err != nil {
			logger.Debug().Err(err).Msg("Value rendered with fallback")
		}
		if hl != nil {
			expr = hl.Code(expr)
			text = hl.Code(text)
		}

		b.WriteString(tag)
		b.WriteByte(' ')
		b.WriteString(expr)
		b.WriteString(" = ")
		b.WriteString(text)
		b.WriteByte('\n')
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	if _, err := io.WriteString(out, b.String()); err != nil {
		logger.Debug().Err(err).Msg("Output write failed")
	}
}

// locationTag formats "[path:line:col]".
func locationTag(r resolution) string {
	field := func(n int) string {
		if n <= 0 {
			return unknown
		}
		return strconv.Itoa(n)
	}
	path := unknown
	if r.file != "" {
		path = displayPath(r.file)
	}
	return "[" + path + ":" + field(r.line) + ":" + field(r.col) + "]"
}

// displayPath shortens absolute paths below the working directory.
func displayPath(path string) string {
	wd := workDir()
	if wd == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
