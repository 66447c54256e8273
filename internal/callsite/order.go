package callsite

import (
	"runtime"
	"sort"
	"unsafe"

	"github.com/coral-mesh/dbg/internal/lru"
	"github.com/coral-mesh/dbg/internal/safe"
)

const (
	// maxCode bounds the size of a function body that is disassembled.
	maxCode = 1 << 20

	scannerCacheSize = 256
)

// call is a direct call to an entry point found in a function body.
type call struct {
	ret  uintptr
	file string
	line int
}

// Scanner counts calls to entry points per source line by disassembling
// the calling function. Results are cached per function.
type Scanner struct {
	isEntry func(name string) bool
	cache   *lru.Cache[uintptr, []call]
}

// NewScanner returns a scanner treating functions whose name satisfies
// isEntry as entry points.
func NewScanner(isEntry func(name string) bool) *Scanner {
	return &Scanner{
		isEntry: isEntry,
		cache:   lru.New[uintptr, []call](scannerCacheSize),
	}
}

// Supported reports whether call ordinals can be computed on this
// architecture.
func Supported() bool {
	return archSupported
}

// Ordinal returns the position of the call that produced f among all
// entry point calls compiled for the same source line, in machine code
// order, along with their count.
func (s *Scanner) Ordinal(f Frame) (ordinal, total int, ok bool) {
	if !archSupported || !f.Direct || f.PC == 0 {
		return 0, 0, false
	}
	fn := runtime.FuncForPC(f.PC - 1)
	if fn == nil {
		return 0, 0, false
	}

	calls := s.cache.GetOrCompute(fn.Entry(), func() []call {
		var out []call
		if err := safe.Do(func() error {
			out = s.scan(fn.Entry())
			return nil
		}); err != nil {
			return nil
		}
		return out
	})

	ordinal = -1
	for _, c := range calls {
		if c.file != f.File || c.line != f.Line {
			continue
		}
		if c.ret == f.PC {
			ordinal = total
		}
		total++
	}
	if ordinal < 0 {
		return 0, 0, false
	}
	return ordinal, total, true
}

func (s *Scanner) scan(entry uintptr) []call {
	code := functionCode(entry)

	var calls []call
	for off := 0; off < len(code); {
		n, rel, isCall := decodeCall(code[off:])
		if n <= 0 {
			break
		}
		if isCall {
			pc := entry + uintptr(off)
			if s.isTarget(uintptr(int64(pc) + rel)) {
				ret := pc + uintptr(n)
				file, line := lineOf(ret)
				calls = append(calls, call{ret: ret, file: file, line: line})
			}
		}
		off += n
	}

	sort.Slice(calls, func(i, j int) bool { return calls[i].ret < calls[j].ret })
	return calls
}

func (s *Scanner) isTarget(pc uintptr) bool {
	fn := runtime.FuncForPC(pc)
	return fn != nil && fn.Entry() == pc && s.isEntry(fn.Name())
}

// functionCode returns the machine code of the function starting at entry.
func functionCode(entry uintptr) []byte {
	end := entry
	for end-entry < maxCode {
		fn := runtime.FuncForPC(end)
		if fn == nil || fn.Entry() != entry {
			break
		}
		end++
	}
	if end == entry {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(entry)), end-entry) //nolint:govet // text segment address
}

// lineOf maps a return address to the innermost source location of its
// call.
func lineOf(ret uintptr) (string, int) {
	frames := runtime.CallersFrames([]uintptr{ret})
	f, _ := frames.Next()
	return f.File, f.Line
}
