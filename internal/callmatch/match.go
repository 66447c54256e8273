// Package callmatch picks the call node that produced a runtime invocation
// and recovers the source text of its arguments.
package callmatch

import (
	"fmt"
	"sort"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
	"github.com/coral-mesh/dbg/internal/source"
)

// Match selects the candidate that produced an invocation with argc values
// observed at column col (1-based; 0 when unknown). cands are the calls of
// one line in source order.
//
// Candidates must take exactly argc arguments without unpacking. With a
// known column the nearest candidate starting at or before it wins, ties
// going to the first in source order. With an unknown column a single
// remaining candidate wins and several are ambiguous.
func Match(cands []source.CallNode, col, argc int) (source.CallNode, error) {
	fit := make([]source.CallNode, 0, len(cands))
	for _, c := range cands {
		if len(c.Args) == argc && !c.Spread {
			fit = append(fit, c)
		}
	}
	if len(fit) == 0 {
		return source.CallNode{}, fmt.Errorf("%w: %d candidates, none with %d arguments", dbgerrors.ErrMatchNotFound, len(cands), argc)
	}

	if col <= 0 {
		if len(fit) > 1 {
			return source.CallNode{}, fmt.Errorf("%w: %d calls with %d arguments and no column", dbgerrors.ErrMatchAmbiguous, len(fit), argc)
		}
		return fit[0], nil
	}

	best := -1
	for i, c := range fit {
		if c.Col > col {
			continue
		}
		if best < 0 || c.Col > fit[best].Col {
			best = i
		}
	}
	if best < 0 {
		return source.CallNode{}, fmt.Errorf("%w: no call with %d arguments at or before column %d", dbgerrors.ErrMatchNotFound, argc, col)
	}
	return fit[best], nil
}

// ColumnFor maps the ordinal of a call among total same-line calls, in
// machine code order, to a candidate column. The mapping holds only when
// the line has exactly total candidates; candidates are ranked by
// evaluation order.
func ColumnFor(cands []source.CallNode, ordinal, total int) (int, bool) {
	if total != len(cands) || ordinal < 0 || ordinal >= total {
		return 0, false
	}
	ranked := make([]source.CallNode, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Order < ranked[j].Order
	})
	return ranked[ordinal].Col, true
}
