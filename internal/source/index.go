package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/go/ast/inspector"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
)

// Target describes the package whose calls are indexed.
type Target struct {
	// PkgPath is the import path of the entry package.
	PkgPath string
	// PkgName is the package's declared name, used for unnamed imports.
	PkgName string
	// Dir is the directory holding the package sources. Files there that
	// belong to the package call the entry points unqualified. Empty
	// disables the rule.
	Dir string
	// Entries maps each entry point name to the number of leading
	// parameters that are not instrumented values.
	Entries map[string]int
}

// Span is a half-open byte range [Start, End) of a file.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Text returns the bytes covered by s, or false when s is out of range.
func (s Span) Text(src []byte) (string, bool) {
	if s.Start < 0 || s.End < s.Start || s.End > len(src) {
		return "", false
	}
	return string(src[s.Start:s.End]), true
}

// CallNode is one call expression invoking an entry point.
type CallNode struct {
	// Name is the entry point invoked.
	Name string
	// Qualifier is the package identifier at the call, "" when unqualified.
	Qualifier string
	// Line and Col locate the start of the call expression. Col is a
	// 1-based byte column.
	Line int
	Col  int
	// CallLine is the line of the opening parenthesis, the line the
	// runtime attributes to the call.
	CallLine int
	// Span covers the whole call expression.
	Span Span
	// NameSpan covers the entry point identifier.
	NameSpan Span
	// Lparen is the offset of the opening parenthesis.
	Lparen int
	// Site covers the leading invocation-context argument, when the entry
	// point takes one.
	Site *Span
	// Args covers each instrumented argument in source order.
	Args []Span
	// Spread is set when the last argument is unpacked with "...".
	Spread bool
	// Order ranks the call among all indexed calls of the file in
	// evaluation order: arguments complete before the call using them.
	Order int
}

// Index is the call table of one file.
type Index struct {
	File  *File
	Calls []CallNode

	byLine map[int][]int
}

// Line returns the calls attributed to line n, in source order.
func (x *Index) Line(n int) []CallNode {
	ids := x.byLine[n]
	if len(ids) == 0 {
		return nil
	}
	out := make([]CallNode, len(ids))
	for i, id := range ids {
		out[i] = x.Calls[id]
	}
	return out
}

// Lines returns the indexed line numbers in ascending order.
func (x *Index) Lines() []int {
	lines := make([]int, 0, len(x.byLine))
	for n := range x.byLine {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	return lines
}

// Parse builds the call table of file.
func Parse(file *File, target Target) (*Index, error) {
	fset := token.NewFileSet()
	af, err := parser.ParseFile(fset, file.Path, file.Text, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dbgerrors.ErrParseFailure, file.Path, err)
	}

	x := &Index{File: file, byLine: make(map[int][]int)}

	r := newResolver(af, file.Path, target)
	if !r.active() {
		return x, nil
	}

	tf := fset.File(af.Pos())
	ins := inspector.New([]*ast.File{af})
	ins.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		name, qualifier, ident, ok := r.resolve(call.Fun)
		if !ok {
			return
		}
		skip := target.Entries[name]
		if len(call.Args) < skip {
			return
		}

		start := tf.Position(call.Pos())
		node := CallNode{
			Name:      name,
			Qualifier: qualifier,
			Line:      start.Line,
			Col:       start.Column,
			CallLine:  tf.Line(call.Lparen),
			Span:      span(tf, call),
			NameSpan:  span(tf, ident),
			Lparen:    tf.Offset(call.Lparen),
			Spread:    call.Ellipsis.IsValid(),
		}
		if skip > 0 {
			site := span(tf, call.Args[skip-1])
			node.Site = &site
		}
		node.Args = make([]Span, 0, len(call.Args)-skip)
		for _, arg := range call.Args[skip:] {
			node.Args = append(node.Args, span(tf, arg))
		}

		x.Calls = append(x.Calls, node)
	})

	rankEvaluationOrder(x.Calls)

	for id, c := range x.Calls {
		x.byLine[c.CallLine] = append(x.byLine[c.CallLine], id)
		if c.Line != c.CallLine {
			x.byLine[c.Line] = append(x.byLine[c.Line], id)
		}
	}
	for line, ids := range x.byLine {
		sort.SliceStable(ids, func(i, j int) bool {
			return x.Calls[ids[i]].Span.Start < x.Calls[ids[j]].Span.Start
		})
		x.byLine[line] = ids
	}

	return x, nil
}

// rankEvaluationOrder numbers calls in post-order: a call whose span ends
// first completes first, and an enclosing call ends after its arguments.
func rankEvaluationOrder(calls []CallNode) {
	ids := make([]int, len(calls))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := calls[ids[i]].Span, calls[ids[j]].Span
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Start > b.Start
	})
	for rank, id := range ids {
		calls[id].Order = rank
	}
}

func span(tf *token.File, n ast.Node) Span {
	return Span{Start: tf.Offset(n.Pos()), End: tf.Offset(n.End())}
}

// resolver decides whether a callee refers to an entry point, following
// the file's imports of the target package.
type resolver struct {
	target      Target
	qualifiers  map[string]bool
	unqualified bool
}

func newResolver(af *ast.File, path string, target Target) *resolver {
	r := &resolver{target: target, qualifiers: make(map[string]bool)}

	for _, imp := range af.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil || importPath != target.PkgPath {
			continue
		}
		switch {
		case imp.Name == nil:
			r.qualifiers[target.PkgName] = true
		case imp.Name.Name == "_":
		case imp.Name.Name == ".":
			r.unqualified = true
		default:
			r.qualifiers[imp.Name.Name] = true
		}
	}

	if target.Dir != "" && af.Name.Name == target.PkgName && filepath.Dir(path) == filepath.Clean(target.Dir) {
		r.unqualified = true
	}

	return r
}

func (r *resolver) active() bool {
	return r.unqualified || len(r.qualifiers) > 0
}

// resolve returns the entry point name, the qualifier and the identifier
// naming the entry point.
func (r *resolver) resolve(fun ast.Expr) (string, string, *ast.Ident, bool) {
	// Explicit instantiation: dbg.Val[int](x).
	switch f := fun.(type) {
	case *ast.IndexExpr:
		fun = f.X
	case *ast.IndexListExpr:
		fun = f.X
	}

	switch f := fun.(type) {
	case *ast.SelectorExpr:
		pkg, ok := f.X.(*ast.Ident)
		// A resolved identifier is a local declaration shadowing the import.
		if !ok || pkg.Obj != nil || !r.qualifiers[pkg.Name] {
			return "", "", nil, false
		}
		if _, ok := r.target.Entries[f.Sel.Name]; !ok {
			return "", "", nil, false
		}
		return f.Sel.Name, pkg.Name, f.Sel, true

	case *ast.Ident:
		if !r.unqualified {
			return "", "", nil, false
		}
		if f.Obj != nil && f.Obj.Kind != ast.Fun {
			return "", "", nil, false
		}
		if _, ok := r.target.Entries[f.Name]; !ok {
			return "", "", nil, false
		}
		return f.Name, "", f, true
	}

	return "", "", nil, false
}

// Indexer parses files on demand and caches their call tables by absolute
// path. It is safe for concurrent use; a file is parsed at most once and a
// parse failure is remembered like a success.
type Indexer struct {
	loader *Loader
	target Target

	mu      sync.RWMutex
	indexes map[string]indexEntry
	group   singleflight.Group
}

type indexEntry struct {
	index *Index
	err   error
}

// NewIndexer creates an indexer reading files through loader.
func NewIndexer(loader *Loader, target Target) *Indexer {
	return &Indexer{
		loader:  loader,
		target:  target,
		indexes: make(map[string]indexEntry),
	}
}

// Target returns the package description the indexer resolves calls to.
func (ix *Indexer) Target() Target {
	return ix.target
}

// Index returns the call table of the file at path. Unreadable and
// unparsable files report ErrParseFailure.
func (ix *Indexer) Index(path string) (*Index, error) {
	file, err := ix.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dbgerrors.ErrParseFailure, err)
	}

	ix.mu.RLock()
	e, ok := ix.indexes[file.Path]
	ix.mu.RUnlock()
	if ok {
		return e.index, e.err
	}

	v, _, _ := ix.group.Do(file.Path, func() (any, error) {
		ix.mu.RLock()
		e, ok := ix.indexes[file.Path]
		ix.mu.RUnlock()
		if ok {
			return e, nil
		}

		x, err := Parse(file, ix.target)
		e = indexEntry{index: x, err: err}

		ix.mu.Lock()
		ix.indexes[file.Path] = e
		ix.mu.Unlock()
		return e, nil
	})
	e = v.(indexEntry)
	return e.index, e.err
}
