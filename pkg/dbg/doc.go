// Package dbg prints values together with the source expressions that
// produced them, then hands the values back unchanged.
//
// A call such as
//
//	total := dbg.Val(price * qty)
//
// writes
//
//	[cart/checkout.go:42:11] price * qty = 1299
//
// to stderr and assigns the product to total. Dbg accepts any number of
// values and prints one line per value; with no values it prints the
// location alone:
//
//	dbg.Dbg()             // [main.go:8:2]
//	dbg.Dbg(name, -2)     // two lines, returns []any{name, -2}
//
// # Call site resolution
//
// The location comes from the runtime stack. Go frames carry file and line
// but no column, so the calling function's machine code is decoded to find
// which of the calls on that line ran, and the call expression is then
// looked up in the parsed source file. When the source cannot be read, or
// several calls on the line fit equally well, the expression is printed as
// <unknown>; the value is always printed. Arguments unpacked with "..."
// are never matched.
//
// The "dbg stamp" command rewrites calls into At and ValAt with a literal
// Site, which removes the need for source files at run time.
//
// # Rendering
//
// Values are printed as Go composite literals with deterministic map
// ordering. Containers wider than 80 columns are broken one element per
// line, each level indented by the configured number of spaces. Types
// implementing fmt.GoStringer, error or fmt.Stringer print through those
// methods; a method that panics prints <unknown T> instead.
//
// # Configuration
//
// Output is configured by, from lowest to highest precedence: built-in
// defaults, the user file dbg.conf under os.UserConfigDir()/debug, the
// project file ./dbg.conf, the DBG_COLOR, DBG_STYLE and DBG_INDENT
// environment variables, and SetColor, SetStyle and SetIndent. Files use
// git-config syntax:
//
//	[dbg]
//	color = auto   ; auto, on or off
//	style = monokai
//	indent = 2
//
// Problems with any layer are logged as warnings and never fail a call.
package dbg
