package callmatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbgerrors "github.com/coral-mesh/dbg/internal/errors"
	"github.com/coral-mesh/dbg/internal/source"
)

// call builds a synthetic candidate at col taking argc arguments.
func call(col, argc, order int) source.CallNode {
	return source.CallNode{
		Name:  "Dbg",
		Col:   col,
		Args:  make([]source.Span, argc),
		Order: order,
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		cands   []source.CallNode
		col     int
		argc    int
		wantCol int
		wantErr error
	}{
		{
			name:    "single candidate",
			cands:   []source.CallNode{call(5, 1, 0)},
			col:     5,
			argc:    1,
			wantCol: 5,
		},
		{
			name:    "nearest column at or before observed",
			cands:   []source.CallNode{call(3, 1, 0), call(15, 1, 1), call(30, 1, 2)},
			col:     20,
			argc:    1,
			wantCol: 15,
		},
		{
			name:    "exact column",
			cands:   []source.CallNode{call(3, 1, 0), call(15, 1, 1)},
			col:     3,
			argc:    1,
			wantCol: 3,
		},
		{
			name:    "argument count filters first",
			cands:   []source.CallNode{call(3, 2, 0), call(15, 1, 1)},
			col:     20,
			argc:    2,
			wantCol: 3,
		},
		{
			name:    "tie keeps first in source order",
			cands:   []source.CallNode{{Name: "Dbg", Col: 7, Args: make([]source.Span, 1), Line: 4}, {Name: "Val", Col: 7, Args: make([]source.Span, 1), Line: 5}},
			col:     9,
			argc:    1,
			wantCol: 7,
		},
		{
			name:    "no candidate with argument count",
			cands:   []source.CallNode{call(3, 1, 0)},
			col:     3,
			argc:    2,
			wantErr: dbgerrors.ErrMatchNotFound,
		},
		{
			name:    "all candidates after column",
			cands:   []source.CallNode{call(10, 1, 0)},
			col:     4,
			argc:    1,
			wantErr: dbgerrors.ErrMatchNotFound,
		},
		{
			name:    "empty line",
			cands:   nil,
			col:     1,
			argc:    0,
			wantErr: dbgerrors.ErrMatchNotFound,
		},
		{
			name:    "unknown column with one fit",
			cands:   []source.CallNode{call(3, 2, 0), call(15, 1, 1)},
			col:     0,
			argc:    1,
			wantCol: 15,
		},
		{
			name:    "unknown column with several fits",
			cands:   []source.CallNode{call(3, 1, 0), call(15, 1, 1)},
			col:     0,
			argc:    1,
			wantErr: dbgerrors.ErrMatchAmbiguous,
		},
		{
			name:    "spread calls never match",
			cands:   []source.CallNode{{Name: "Dbg", Col: 2, Args: make([]source.Span, 1), Spread: true}},
			col:     2,
			argc:    1,
			wantErr: dbgerrors.ErrMatchNotFound,
		},
		{
			name:    "zero arguments",
			cands:   []source.CallNode{call(2, 0, 0), call(12, 1, 1)},
			col:     12,
			argc:    0,
			wantCol: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.cands, tt.col, tt.argc)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, got.Col)
		})
	}
}

func TestMatch_TieReturnsFirst(t *testing.T) {
	cands := []source.CallNode{
		{Name: "Dbg", Col: 7, Args: make([]source.Span, 1), Line: 4},
		{Name: "Val", Col: 7, Args: make([]source.Span, 1), Line: 5},
	}
	got, err := Match(cands, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dbg", got.Name)
}

func TestMatch_Deterministic(t *testing.T) {
	cands := []source.CallNode{call(3, 1, 0), call(15, 1, 1), call(30, 1, 2)}
	first, err := Match(cands, 29, 1)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Match(cands, 29, 1)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestColumnFor(t *testing.T) {
	// Source order: outer call at column 2 wraps the call at column 10;
	// a third call at column 25 runs last.
	cands := []source.CallNode{call(2, 2, 1), call(10, 1, 0), call(25, 1, 2)}

	tests := []struct {
		name    string
		ordinal int
		total   int
		wantCol int
		wantOK  bool
	}{
		{name: "first executed is the nested call", ordinal: 0, total: 3, wantCol: 10, wantOK: true},
		{name: "second executed is the outer call", ordinal: 1, total: 3, wantCol: 2, wantOK: true},
		{name: "last executed", ordinal: 2, total: 3, wantCol: 25, wantOK: true},
		{name: "call count disagrees with candidates", ordinal: 0, total: 2, wantOK: false},
		{name: "negative ordinal", ordinal: -1, total: 3, wantOK: false},
		{name: "ordinal out of range", ordinal: 3, total: 3, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := ColumnFor(cands, tt.ordinal, tt.total)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCol, col)
			}
		})
	}

	// Candidates keep their source order.
	assert.Equal(t, 2, cands[0].Col)
}
