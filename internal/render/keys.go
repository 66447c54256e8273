package render

import (
	"cmp"
	"reflect"
	"sort"
)

// entry is a map entry with its rendered key.
type entry struct {
	key, val reflect.Value
	keyText  string
	valText  string
}

// sortEntries orders map entries deterministically. Keys of different
// dynamic types are grouped by type; within a type, ordered kinds compare
// by value and everything else by rendered key text, then rendered value.
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if c := compareKeys(a.key, b.key); c != 0 {
			return c < 0
		}
		if a.keyText != b.keyText {
			return a.keyText < b.keyText
		}
		return a.valText < b.valText
	})
}

func compareKeys(a, b reflect.Value) int {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if !a.IsValid() || !b.IsValid() {
		switch {
		case !a.IsValid() && !b.IsValid():
			return 0
		case !a.IsValid():
			return -1
		default:
			return 1
		}
	}
	if c := compareTypes(a.Type(), b.Type()); c != 0 {
		return c
	}

	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		// NaN sorts first.
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case !a.Bool():
			return -1
		default:
			return 1
		}
	}
	return 0
}

// compareTypes orders distinct key types by kind, then by qualified name.
func compareTypes(a, b reflect.Type) int {
	if a == b {
		return 0
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.String(), b.String()); c != 0 {
		return c
	}
	return cmp.Compare(a.PkgPath(), b.PkgPath())
}
