package callmatch

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
	"github.com/coral-mesh/dbg/internal/source"
)

// Extract returns the verbatim source text of each argument of node, in
// source order. Span boundaries come from the syntax tree, so nested
// delimiters and multi-line arguments are kept intact.
func Extract(src []byte, node source.CallNode) ([]string, error) {
	exprs := make([]string, 0, len(node.Args))
	for i, arg := range node.Args {
		text, ok := arg.Text(src)
		if !ok {
			return nil, fmt.Errorf("%w: argument %d span [%d,%d) outside source", dbgerrors.ErrMatchNotFound, i, arg.Start, arg.End)
		}
		exprs = append(exprs, text)
	}
	return exprs, nil
}

// exprPrefix turns an expression into a parsable statement list for gofmt.
const exprPrefix = "package p\n\nvar _ = "

// Display normalizes expression text for output. Single-line text is
// returned as is. Multi-line text is reformatted so continuation lines are
// indented by indent spaces per level; text gofmt rejects is returned
// verbatim.
func Display(expr string, indent int) string {
	if !strings.Contains(expr, "\n") {
		return expr
	}

	out, err := format.Source([]byte(exprPrefix + expr + "\n"))
	if err != nil {
		return expr
	}
	out = bytes.TrimPrefix(out, []byte(exprPrefix))
	out = bytes.TrimRight(out, "\n")

	if indent < 1 {
		indent = 1
	}
	pad := strings.Repeat(" ", indent)

	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))
		lines[i] = strings.Repeat(pad, tabs) + line[tabs:]
	}
	return strings.Join(lines, "\n")
}
