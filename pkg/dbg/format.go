package dbg

import (
	"fmt"
	"io"

	"github.com/coral-mesh/dbg/internal/render"
)

// Format renders v the way Dbg prints values, without color.
func Format(v any) string {
	cfg, _, _ := std.snapshot()
	return render.New(cfg.Indent).Render(v)
}

// Fprint writes the rendering of v and a newline to w.
func Fprint(w io.Writer, v any) error {
	_, err := fmt.Fprintln(w, Format(v))
	return err
}
