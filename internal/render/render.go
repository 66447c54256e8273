// Package render prints arbitrary Go values as Go composite literals,
// breaking large containers over several indented lines.
package render

import (
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
	"github.com/coral-mesh/dbg/internal/safe"
)

const (
	// DefaultWidth is the column budget of a single-line container.
	DefaultWidth = 80
	// DefaultIndent is the number of spaces per nesting level.
	DefaultIndent = 2
	// MaxDepth bounds nesting; deeper values print as T{...}.
	MaxDepth = 32
)

// Renderer formats values. The zero value uses DefaultWidth and
// DefaultIndent. A Renderer holds no state between calls: the same value
// and settings always give the same text.
type Renderer struct {
	Indent int
	Width  int
}

// New returns a renderer with the given indent and the default width.
func New(indent int) Renderer {
	return Renderer{Indent: indent, Width: DefaultWidth}
}

// Render formats v. It never panics.
func (r Renderer) Render(v any) string {
	s, _ := r.RenderErr(v)
	return s
}

// RenderErr formats v and reports ErrRenderFailure when some part of it
// could only be printed as a fallback.
func (r Renderer) RenderErr(v any) (out string, err error) {
	indent, width := r.Indent, r.Width
	if indent < 1 {
		indent = DefaultIndent
	}
	if width < 1 {
		width = DefaultWidth
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = Fallback(reflect.TypeOf(v))
			err = fmt.Errorf("%w: %v", dbgerrors.ErrRenderFailure, rec)
		}
	}()

	p := &printer{visiting: make(map[visitKey]bool)}
	d := p.value(reflect.ValueOf(v), nil, 0)
	out = d.layout(width, indent, 0)
	if p.failure != nil {
		err = fmt.Errorf("%w: %v", dbgerrors.ErrRenderFailure, p.failure)
	}
	return out, err
}

// Fallback is the text printed for a value whose form cannot be computed.
func Fallback(t reflect.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return "<unknown " + t.String() + ">"
}

// FormatFloat prints the shortest representation of f, keeping a decimal
// point on integral values so 8.0 stays distinguishable from 8.
func FormatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type printer struct {
	visiting map[visitKey]bool
	failure  error
}

var (
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
	stringerType   = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	goStringerType = reflect.TypeOf((*fmt.GoStringer)(nil)).Elem()
)

// value converts v to a doc. static is the element type of the enclosing
// container, used to elide repeated composite types.
func (p *printer) value(v reflect.Value, static reflect.Type, depth int) *doc {
	if !v.IsValid() {
		return leaf("nil")
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return leaf("nil")
		}
		return p.value(v.Elem(), nil, depth)
	}

	t := v.Type()
	if isNilable(v) && v.IsNil() {
		return p.nilValue(t, static)
	}

	if d, ok := p.methods(v); ok {
		return d
	}

	elide := static != nil && static == t

	switch v.Kind() {
	case reflect.Bool:
		return leaf(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return leaf(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return leaf(strconv.FormatUint(v.Uint(), 10))
	case reflect.Uintptr:
		return leaf("0x" + strconv.FormatUint(v.Uint(), 16))
	case reflect.Float32:
		return leaf(FormatFloat(v.Float(), 32))
	case reflect.Float64:
		return leaf(FormatFloat(v.Float(), 64))
	case reflect.Complex64:
		return leaf(strconv.FormatComplex(v.Complex(), 'g', -1, 64))
	case reflect.Complex128:
		return leaf(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.String:
		return leaf(strconv.Quote(v.String()))

	case reflect.Slice, reflect.Array:
		return p.list(v, elide, depth)
	case reflect.Map:
		return p.mapping(v, elide, depth)
	case reflect.Struct:
		return p.structure(v, elide, depth)
	case reflect.Ptr:
		return p.pointer(v, depth)

	case reflect.Chan:
		return leaf(fmt.Sprintf("(%s)(cap=%d)", t, v.Cap()))
	case reflect.Func:
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			return leaf(fn.Name())
		}
		return leaf(t.String())
	case reflect.UnsafePointer:
		return leaf("unsafe.Pointer(...)")
	}

	return leaf(Fallback(t))
}

func isNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

func (p *printer) nilValue(t reflect.Type, static reflect.Type) *doc {
	if static != nil && static == t {
		return leaf("nil")
	}
	name := t.String()
	switch t.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Chan:
		name = "(" + name + ")"
	}
	return leaf(name + "(nil)")
}

// methods prints values implementing fmt.GoStringer, error or fmt.Stringer
// through those methods, in that order. A panicking method yields the
// fallback text.
func (p *printer) methods(v reflect.Value) (*doc, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	t := v.Type()

	var text string
	var call func() error
	switch {
	case t.Implements(goStringerType):
		call = func() error {
			text = v.Interface().(fmt.GoStringer).GoString()
			return nil
		}
	case t.Implements(errorType):
		call = func() error {
			text = t.String() + "(" + strconv.Quote(v.Interface().(error).Error()) + ")"
			return nil
		}
	case t.Implements(stringerType):
		call = func() error {
			text = t.String() + "(" + v.Interface().(fmt.Stringer).String() + ")"
			return nil
		}
	default:
		return nil, false
	}

	if err := safe.Do(call); err != nil {
		p.failure = err
		return leaf(Fallback(t)), true
	}
	return leaf(text), true
}

// enter marks a reference value as being printed. It reports false when the
// value is already on the current path, which means a cycle.
func (p *printer) enter(key visitKey) bool {
	if p.visiting[key] {
		return false
	}
	p.visiting[key] = true
	return true
}

func (p *printer) leave(key visitKey) {
	delete(p.visiting, key)
}

func typePrefix(t reflect.Type, elide bool) string {
	if elide {
		return ""
	}
	return t.String()
}

func (p *printer) list(v reflect.Value, elide bool, depth int) *doc {
	t := v.Type()
	open := typePrefix(t, elide) + "{"

	if v.Kind() == reflect.Slice && v.Len() > 0 {
		key := visitKey{ptr: v.Pointer(), typ: t, n: v.Len()}
		if !p.enter(key) {
			return leaf(open + "...}")
		}
		defer p.leave(key)
	}
	if depth >= MaxDepth {
		return leaf(open + "...}")
	}

	d := &doc{open: open, close: "}", composite: true}
	elem := t.Elem()
	for i := 0; i < v.Len(); i++ {
		d.items = append(d.items, item{val: p.value(v.Index(i), elem, depth+1)})
	}
	return d
}

func (p *printer) mapping(v reflect.Value, elide bool, depth int) *doc {
	t := v.Type()
	open := typePrefix(t, elide) + "{"

	key := visitKey{ptr: v.Pointer(), typ: t}
	if !p.enter(key) {
		return leaf(open + "...}")
	}
	defer p.leave(key)
	if depth >= MaxDepth {
		return leaf(open + "...}")
	}

	// map[K]struct{} is a set: print the keys only.
	set := t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0

	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		e := entry{key: iter.Key(), val: iter.Value()}
		e.keyText = p.value(e.key, t.Key(), depth+1).flat()
		if !set {
			e.valText = p.value(e.val, t.Elem(), depth+1).flat()
		}
		entries = append(entries, e)
	}
	sortEntries(entries)

	d := &doc{open: open, close: "}", composite: true}
	for _, e := range entries {
		if set {
			d.items = append(d.items, item{val: p.value(e.key, t.Key(), depth+1)})
			continue
		}
		d.items = append(d.items, item{
			prefix: e.keyText + ": ",
			val:    p.value(e.val, t.Elem(), depth+1),
		})
	}
	return d
}

func (p *printer) structure(v reflect.Value, elide bool, depth int) *doc {
	t := v.Type()
	open := typePrefix(t, elide) + "{"
	if depth >= MaxDepth {
		return leaf(open + "...}")
	}

	d := &doc{open: open, close: "}", composite: true}
	for i := 0; i < v.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "_" {
			continue
		}
		d.items = append(d.items, item{
			prefix: f.Name + ": ",
			val:    p.value(v.Field(i), nil, depth+1),
		})
	}
	return d
}

func (p *printer) pointer(v reflect.Value, depth int) *doc {
	t := v.Type()
	key := visitKey{ptr: v.Pointer(), typ: t}
	if !p.enter(key) {
		return leaf("&" + t.Elem().String() + "{...}")
	}
	defer p.leave(key)

	d := p.value(v.Elem(), nil, depth)
	if !d.composite {
		return leaf("&" + d.leaf)
	}
	d.open = "&" + d.open
	return d
}
