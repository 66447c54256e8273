package dbg

// Site is an explicit invocation context: the location of a call and,
// optionally, the source text of each of its value arguments. It is
// normally written by "dbg stamp" rather than by hand.
type Site struct {
	File  string
	Line  int
	Col   int
	Exprs []string
}

// Dbg prints each value with the source expression that produced it and
// returns the values: nil for none, the value itself for one, and the
// argument slice for more.
//
//go:noinline
func Dbg(values ...any) any {
	emit(nil, values)
	return result(values)
}

// Val prints v and returns it.
//
//go:noinline
func Val[T any](v T) T {
	emit(nil, []any{v})
	return v
}

// Val2 prints a and b and returns them.
//
//go:noinline
func Val2[A, B any](a A, b B) (A, B) {
	emit(nil, []any{a, b})
	return a, b
}

// At is Dbg with an explicit invocation context.
//
//go:noinline
func At(site Site, values ...any) any {
	emit(&site, values)
	return result(values)
}

// ValAt is Val with an explicit invocation context.
//
//go:noinline
func ValAt[T any](site Site, v T) T {
	emit(&site, []any{v})
	return v
}

func result(values []any) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}
