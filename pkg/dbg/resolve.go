package dbg

import (
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/dbg/internal/callmatch"
	"github.com/coral-mesh/dbg/internal/callsite"
	"github.com/coral-mesh/dbg/internal/entry"
	"github.com/coral-mesh/dbg/internal/source"
)

var (
	indexer = source.NewIndexer(source.NewLoader(), entry.Target(packageDir()))
	scanner = callsite.NewScanner(entry.IsRuntimeName)
)

func packageDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}

// resolution is what is known about one invocation. Zero fields and a nil
// exprs slice are unknown.
type resolution struct {
	file  string
	line  int
	col   int
	exprs []string
}

// resolve locates the invocation and recovers the source text of its argc
// value arguments. Failures leave fields unknown and are logged at debug
// level.
func resolve(site *Site, argc int, logger zerolog.Logger) resolution {
	if site != nil {
		r := resolution{file: site.File, line: site.Line, col: site.Col}
		if len(site.Exprs) == argc {
			r.exprs = site.Exprs
			return r
		}
		if site.File == "" || site.Line <= 0 {
			return r
		}
		match(&r, site.Col, nil, argc, logger)
		return r
	}

	frame, err := callsite.Locate(entry.PkgPath + ".")
	if err != nil {
		logger.Debug().Err(err).Msg("Call site unresolved")
		return resolution{}
	}
	r := resolution{file: frame.File, line: frame.Line}
	match(&r, 0, &frame, argc, logger)
	return r
}

// match finds the call node of r's line. With a frame the column comes
// from the call ordinal.
func match(r *resolution, col int, frame *callsite.Frame, argc int, logger zerolog.Logger) {
	idx, err := indexer.Index(r.file)
	if err != nil {
		logger.Debug().Err(err).Str("file", r.file).Msg("Source unavailable")
		return
	}
	cands := idx.Line(r.line)

	if frame != nil {
		if ordinal, total, ok := scanner.Ordinal(*frame); ok {
			if c, ok := callmatch.ColumnFor(callLine(cands, r.line), ordinal, total); ok {
				col = c
			}
		}
	}

	node, err := callmatch.Match(cands, col, argc)
	if err != nil {
		logger.Debug().Err(err).Str("file", r.file).Int("line", r.line).Msg("Call not matched")
		return
	}
	exprs, err := callmatch.Extract(idx.File.Text, node)
	if err != nil {
		logger.Debug().Err(err).Str("file", r.file).Int("line", r.line).Msg("Arguments not extracted")
		return
	}
	r.col = node.Col
	r.exprs = exprs
}

// callLine keeps the candidates the runtime attributes to line.
func callLine(cands []source.CallNode, line int) []source.CallNode {
	out := cands[:0:0]
	for _, c := range cands {
		if c.CallLine == line {
			out = append(out, c)
		}
	}
	return out
}
