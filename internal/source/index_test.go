package source

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
)

var testTarget = Target{
	PkgPath: "github.com/coral-mesh/dbg/pkg/dbg",
	PkgName: "dbg",
	Entries: map[string]int{"Dbg": 0, "Val": 0, "Val2": 0, "At": 1, "ValAt": 1},
}

const sample = `package main

import (
	"fmt"

	"github.com/coral-mesh/dbg/pkg/dbg"
)

func main() {
	x := 4
	y := 5
	dbg.Dbg(x)
	fmt.Println(dbg.Dbg(x), dbg.Dbg(y + 8))
	dbg.Dbg()
	dbg.Dbg(
		[]int{1, 2},
		map[string]int{"a": 1},
	)
	_ = dbg.Val[int](x)
	dbg.At(dbg.Site{File: "main.go", Line: 20}, x, y)
}
`

func parse(t *testing.T, path, text string, target Target) *Index {
	t.Helper()
	x, err := Parse(NewFile(path, []byte(text)), target)
	require.NoError(t, err)
	return x
}

func argTexts(t *testing.T, x *Index, c CallNode) []string {
	t.Helper()
	out := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		s, ok := a.Text(x.File.Text)
		require.True(t, ok)
		out = append(out, s)
	}
	return out
}

func TestParse_Sample(t *testing.T) {
	x := parse(t, "/src/main.go", sample, testTarget)

	require.Len(t, x.Calls, 7)
	assert.Equal(t, []int{12, 13, 14, 15, 19, 20}, x.Lines())

	t.Run("single call", func(t *testing.T) {
		calls := x.Line(12)
		require.Len(t, calls, 1)
		assert.Equal(t, "Dbg", calls[0].Name)
		assert.Equal(t, "dbg", calls[0].Qualifier)
		assert.Equal(t, 2, calls[0].Col)
		assert.Equal(t, []string{"x"}, argTexts(t, x, calls[0]))
	})

	t.Run("two calls on one line", func(t *testing.T) {
		calls := x.Line(13)
		require.Len(t, calls, 2)
		assert.Equal(t, 14, calls[0].Col)
		assert.Equal(t, 26, calls[1].Col)
		assert.Equal(t, []string{"x"}, argTexts(t, x, calls[0]))
		assert.Equal(t, []string{"y + 8"}, argTexts(t, x, calls[1]))
		assert.Less(t, calls[0].Order, calls[1].Order)
	})

	t.Run("zero arguments", func(t *testing.T) {
		calls := x.Line(14)
		require.Len(t, calls, 1)
		assert.Empty(t, calls[0].Args)
	})

	t.Run("multi-line arguments", func(t *testing.T) {
		calls := x.Line(15)
		require.Len(t, calls, 1)
		assert.Equal(t, 15, calls[0].CallLine)
		assert.Equal(t, []string{"[]int{1, 2}", `map[string]int{"a": 1}`}, argTexts(t, x, calls[0]))
	})

	t.Run("explicit instantiation", func(t *testing.T) {
		calls := x.Line(19)
		require.Len(t, calls, 1)
		assert.Equal(t, "Val", calls[0].Name)
		assert.Equal(t, 6, calls[0].Col)
		name, _ := calls[0].NameSpan.Text(x.File.Text)
		assert.Equal(t, "Val", name)
	})

	t.Run("invocation context argument", func(t *testing.T) {
		calls := x.Line(20)
		require.Len(t, calls, 1)
		require.NotNil(t, calls[0].Site)
		site, _ := calls[0].Site.Text(x.File.Text)
		assert.Equal(t, `dbg.Site{File: "main.go", Line: 20}`, site)
		assert.Equal(t, []string{"x", "y"}, argTexts(t, x, calls[0]))
	})
}

func TestParse_CallLineDiffersFromStart(t *testing.T) {
	text := `package main

import "github.com/coral-mesh/dbg/pkg/dbg"

func main() {
	_ = dbg.
		Val(1)
}
`
	x := parse(t, "/src/main.go", text, testTarget)
	require.Len(t, x.Calls, 1)
	assert.Equal(t, 6, x.Calls[0].Line)
	assert.Equal(t, 7, x.Calls[0].CallLine)
	assert.Len(t, x.Line(6), 1)
	assert.Len(t, x.Line(7), 1)
}

func TestParse_NestedOrder(t *testing.T) {
	text := `package main

import "github.com/coral-mesh/dbg/pkg/dbg"

func main() {
	dbg.Dbg(dbg.Dbg(1), 2)
}
`
	x := parse(t, "/src/main.go", text, testTarget)
	calls := x.Line(6)
	require.Len(t, calls, 2)

	outer, inner := calls[0], calls[1]
	assert.Equal(t, 2, outer.Col)
	assert.Equal(t, 10, inner.Col)
	assert.Len(t, outer.Args, 2)
	assert.Len(t, inner.Args, 1)
	assert.Less(t, inner.Order, outer.Order, "arguments are evaluated before the enclosing call")
}

func TestParse_ImportForms(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLines []int
		wantQual  string
	}{
		{
			name: "renamed import",
			text: `package main

import d "github.com/coral-mesh/dbg/pkg/dbg"

func main() {
	d.Dbg(1)
}
`,
			wantLines: []int{6},
			wantQual:  "d",
		},
		{
			name: "dot import",
			text: `package main

import . "github.com/coral-mesh/dbg/pkg/dbg"

func main() {
	Dbg(1)
	_ = Val(2)
}
`,
			wantLines: []int{6, 7},
			wantQual:  "",
		},
		{
			name: "shadowed by a local variable",
			text: `package main

import "github.com/coral-mesh/dbg/pkg/dbg"

type fake struct{}

func (fake) Dbg(v ...any) any { return nil }

func main() {
	dbg.Dbg(1)
	{
		dbg := fake{}
		dbg.Dbg(2)
	}
}
`,
			wantLines: []int{10},
			wantQual:  "dbg",
		},
		{
			name: "blank import",
			text: `package main

import _ "github.com/coral-mesh/dbg/pkg/dbg"

func Dbg(int) {}

func main() {
	Dbg(1)
}
`,
			wantLines: []int{},
		},
		{
			name: "same name from another package",
			text: `package main

import "example.com/other/dbg"

func main() {
	dbg.Dbg(1)
}
`,
			wantLines: []int{},
		},
		{
			name: "not an entry point",
			text: `package main

import "github.com/coral-mesh/dbg/pkg/dbg"

func main() {
	dbg.Format(1)
}
`,
			wantLines: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := parse(t, "/src/main.go", tt.text, testTarget)
			assert.Equal(t, tt.wantLines, x.Lines())
			for _, c := range x.Calls {
				assert.Equal(t, tt.wantQual, c.Qualifier)
			}
		})
	}
}

func TestParse_InsideTargetPackage(t *testing.T) {
	text := `package dbg

func helper() {
	Dbg(1)
}
`
	target := testTarget
	target.Dir = "/src/pkg/dbg"

	x := parse(t, "/src/pkg/dbg/helper.go", text, target)
	assert.Equal(t, []int{4}, x.Lines())

	// Same package name elsewhere is not the target package.
	x = parse(t, "/src/vendor/dbg/helper.go", text, target)
	assert.Empty(t, x.Calls)
}

func TestParse_Spread(t *testing.T) {
	text := `package main

import "github.com/coral-mesh/dbg/pkg/dbg"

func main() {
	xs := []any{1, 2}
	dbg.Dbg(xs...)
}
`
	x := parse(t, "/src/main.go", text, testTarget)
	require.Len(t, x.Calls, 1)
	assert.True(t, x.Calls[0].Spread)
}

func TestParse_Failure(t *testing.T) {
	_, err := Parse(NewFile("/src/broken.go", []byte("package main\nfunc {")), testTarget)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbgerrors.ErrParseFailure))
}

func TestSpan_Text(t *testing.T) {
	src := []byte("abcdef")
	s, ok := Span{Start: 1, End: 3}.Text(src)
	assert.True(t, ok)
	assert.Equal(t, "bc", s)

	_, ok = Span{Start: 4, End: 9}.Text(src)
	assert.False(t, ok)
	_, ok = Span{Start: 3, End: 2}.Text(src)
	assert.False(t, ok)
}

func TestIndexer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ix := NewIndexer(NewLoader(), testTarget)

	t.Run("caches per path", func(t *testing.T) {
		first, err := ix.Index(path)
		require.NoError(t, err)
		second, err := ix.Index(path)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("concurrent first use", func(t *testing.T) {
		other := filepath.Join(dir, "other.go")
		require.NoError(t, os.WriteFile(other, []byte(sample), 0o644))

		var wg sync.WaitGroup
		results := make([]*Index, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				x, err := ix.Index(other)
				assert.NoError(t, err)
				results[i] = x
			}(i)
		}
		wg.Wait()
		for _, x := range results {
			assert.Same(t, results[0], x)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ix.Index(filepath.Join(dir, "missing.go"))
		assert.True(t, errors.Is(err, dbgerrors.ErrParseFailure))
	})

	t.Run("parse failure is remembered", func(t *testing.T) {
		broken := filepath.Join(dir, "broken.go")
		require.NoError(t, os.WriteFile(broken, []byte("package main\nfunc {"), 0o644))

		_, err := ix.Index(broken)
		assert.True(t, errors.Is(err, dbgerrors.ErrParseFailure))
		_, err = ix.Index(broken)
		assert.True(t, errors.Is(err, dbgerrors.ErrParseFailure))
	})
}
