package config

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is satisfied by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// UseColor decides whether output written to w is colored. ColorAuto
// colors only terminals and honors a non-empty NO_COLOR.
func (c Config) UseColor(w io.Writer) bool {
	switch c.Color {
	case ColorOn:
		return true
	case ColorOff:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
