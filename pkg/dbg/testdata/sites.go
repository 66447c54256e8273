package sample

import "github.com/coral-mesh/dbg/pkg/dbg"

func pair(x, y int) {
	a, b := dbg.Dbg(x), dbg.Dbg(y + 8)
	_, _ = a, b
}
