// Package source loads Go source files and indexes the calls they make into
// the dbg entry points.
package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/coral-mesh/dbg/internal/safe"
)

// File is the full text of one source file with a line table.
type File struct {
	// Path is the absolute path of the file.
	Path string
	// Text is the file content.
	Text []byte

	// lines holds the byte offset at which each line starts.
	lines []int
}

// NewFile builds a File from in-memory text.
func NewFile(path string, text []byte) *File {
	lines := []int{0}
	for i, b := range text {
		if b == '\n' && i+1 < len(text) {
			lines = append(lines, i+1)
		}
	}
	return &File{Path: path, Text: text, lines: lines}
}

// LineCount returns the number of lines.
func (f *File) LineCount() int {
	if len(f.Text) == 0 {
		return 0
	}
	return len(f.lines)
}

// Line returns line n (1-based) without its terminator, or "" when n is
// out of range.
func (f *File) Line(n int) string {
	if n < 1 || n > f.LineCount() {
		return ""
	}
	start := f.lines[n-1]
	end := len(f.Text)
	if n < len(f.lines) {
		end = f.lines[n]
	}
	return string(bytes.TrimRight(f.Text[start:end], "\r\n"))
}

// Offset converts a 1-based line and byte column into a byte offset.
func (f *File) Offset(line, col int) (int, bool) {
	if line < 1 || line > f.LineCount() || col < 1 {
		return 0, false
	}
	off := f.lines[line-1] + col - 1
	if off > len(f.Text) {
		return 0, false
	}
	return off, true
}

// Position converts a byte offset into a 1-based line and byte column.
func (f *File) Position(offset int) (line, col int) {
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - f.lines[i] + 1
}

// Loader reads source files once and serves them from memory afterwards.
// It is safe for concurrent use; concurrent first loads of one path share
// a single read.
type Loader struct {
	mu    sync.RWMutex
	files map[string]*File
	group singleflight.Group
	opts  safe.ReadOptions
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{
		files: make(map[string]*File),
		opts:  safe.ReadOptions{AllowSymlinks: true},
	}
}

// Load returns the cached file for path, reading it on first access.
// Read failures are returned and not cached.
func (l *Loader) Load(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	l.mu.RLock()
	f, ok := l.files[abs]
	l.mu.RUnlock()
	if ok {
		return f, nil
	}

	v, err, _ := l.group.Do(abs, func() (any, error) {
		l.mu.RLock()
		f, ok := l.files[abs]
		l.mu.RUnlock()
		if ok {
			return f, nil
		}

		data, err := safe.ReadFile(abs, &l.opts)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", abs, err)
		}

		f = NewFile(abs, data)
		l.mu.Lock()
		l.files[abs] = f
		l.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*File), nil
}

// Len returns the number of cached files.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.files)
}
