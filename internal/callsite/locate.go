// Package callsite finds the source location of the code that called into
// an instrumentation entry point.
package callsite

import (
	"fmt"
	"runtime"
	"strings"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
)

// maxDepth bounds the number of stack frames inspected.
const maxDepth = 64

// Frame is a caller location.
type Frame struct {
	File     string
	Line     int
	Function string

	// PC is the return address of the physical frame holding the call.
	PC uintptr

	// Direct is true when the call instruction at PC belongs to Function
	// itself rather than to a function inlined into it.
	Direct bool
}

// String returns "file:line".
func (f Frame) String() string {
	return fmt.Sprintf("%s:%d", f.File, f.Line)
}

// Locate returns the first file-backed frame above its caller whose
// function name starts with none of skip. Runtime frames are always
// skipped.
func Locate(skip ...string) (Frame, error) {
	var pcs [maxDepth]uintptr
	n := runtime.Callers(2, pcs[:])

	for i := 0; i < n; i++ {
		frames := runtime.CallersFrames(pcs[i : i+1])
		for first := true; ; first = false {
			f, more := frames.Next()
			if f.Function == "runtime.goexit" {
				return Frame{}, dbgerrors.ErrLocationUnavailable
			}
			if f.File != "" && f.Line > 0 && !skipped(f.Function, skip) {
				return Frame{
					File:     f.File,
					Line:     f.Line,
					Function: f.Function,
					PC:       pcs[i],
					Direct:   first,
				}, nil
			}
			if !more {
				break
			}
		}
	}
	return Frame{}, fmt.Errorf("%w: %d frames inspected", dbgerrors.ErrLocationUnavailable, n)
}

func skipped(function string, prefixes []string) bool {
	if function == "" || strings.HasPrefix(function, "runtime.") {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}
