// Package entry describes the instrumentation entry points of package dbg
// for the code that indexes and rewrites calls to them.
package entry

import (
	"strings"

	"github.com/coral-mesh/dbg/internal/source"
)

const (
	// PkgPath is the import path of the instrumentation package.
	PkgPath = "github.com/coral-mesh/dbg/pkg/dbg"
	// PkgName is its declared package name.
	PkgName = "dbg"
)

// params maps each entry point to the number of its leading parameters
// that are not printed values.
var params = map[string]int{
	"Dbg":   0,
	"Val":   0,
	"Val2":  0,
	"At":    1,
	"ValAt": 1,
}

// stamped pairs each entry point with its explicit-site counterpart.
var stamped = map[string]string{
	"Dbg": "At",
	"Val": "ValAt",
}

// Target returns the indexing target for the entry points. dir is the
// directory of the package sources, or "" when unqualified calls from
// inside the package need not be recognized.
func Target(dir string) source.Target {
	entries := make(map[string]int, len(params))
	for name, n := range params {
		entries[name] = n
	}
	return source.Target{
		PkgPath: PkgPath,
		PkgName: PkgName,
		Dir:     dir,
		Entries: entries,
	}
}

// IsRuntimeName reports whether a function name reported by the runtime
// belongs to an entry point. Generic instantiations carry a bracketed
// suffix.
func IsRuntimeName(name string) bool {
	rest, ok := strings.CutPrefix(name, PkgPath+".")
	if !ok {
		return false
	}
	if i := strings.IndexByte(rest, '['); i >= 0 {
		rest = rest[:i]
	}
	_, ok = params[rest]
	return ok
}

// Stamped returns the explicit-site form of an entry point.
func Stamped(name string) (string, bool) {
	to, ok := stamped[name]
	return to, ok
}

// Unstamped returns the entry point an explicit-site form replaces.
func Unstamped(name string) (string, bool) {
	for from, to := range stamped {
		if to == name {
			return from, true
		}
	}
	return "", false
}
