// Package config resolves the output configuration: color mode, palette and
// indent width, layered from defaults, config files, environment and
// programmatic overrides.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorMode selects whether output is colored.
type ColorMode string

const (
	// ColorAuto colors output only when it goes to a terminal.
	ColorAuto ColorMode = "auto"
	// ColorOn always colors output.
	ColorOn ColorMode = "on"
	// ColorOff never colors output.
	ColorOff ColorMode = "off"
)

// ParseColorMode accepts "auto" and any boolean spelling (on/off, yes/no,
// true/false, 1/0).
func ParseColorMode(s string) (ColorMode, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "auto":
		return ColorAuto, nil
	case "on", "yes", "y":
		return ColorOn, nil
	case "off", "no", "n":
		return ColorOff, nil
	default:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", fmt.Errorf("invalid color mode %q: want auto, on or off", s)
		}
		if b {
			return ColorOn, nil
		}
		return ColorOff, nil
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ColorMode) UnmarshalText(text []byte) error {
	mode, err := ParseColorMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Config is the fully resolved output configuration.
type Config struct {
	// Color selects colored output.
	Color ColorMode `yaml:"color" json:"color" env:"DBG_COLOR" jsonschema:"enum=auto,enum=on,enum=off,default=auto,description=Color mode"`
	// Style names the syntax highlighting palette.
	Style string `yaml:"style" json:"style" env:"DBG_STYLE" jsonschema:"default=monokai,description=Highlighting palette name"`
	// Indent is the number of spaces per nesting level.
	Indent int `yaml:"indent" json:"indent" env:"DBG_INDENT" jsonschema:"minimum=1,default=2,description=Spaces per nesting level"`
}

// Partial holds the fields one layer sets explicitly. Nil fields are unset
// and leave the lower layer's value in place.
type Partial struct {
	Color  *ColorMode
	Style  *string
	Indent *int
}

// Field names as they appear in config files and provenance records.
const (
	FieldColor  = "color"
	FieldStyle  = "style"
	FieldIndent = "indent"
)

// Fields lists the configuration field names in display order.
func Fields() []string {
	return []string{FieldColor, FieldStyle, FieldIndent}
}

// Empty reports whether the partial sets no field.
func (p Partial) Empty() bool {
	return p.Color == nil && p.Style == nil && p.Indent == nil
}

// Apply overwrites the fields of cfg that p sets and returns their names.
func (p Partial) Apply(cfg *Config) []string {
	var set []string
	if p.Color != nil {
		cfg.Color = *p.Color
		set = append(set, FieldColor)
	}
	if p.Style != nil {
		cfg.Style = *p.Style
		set = append(set, FieldStyle)
	}
	if p.Indent != nil {
		cfg.Indent = *p.Indent
		set = append(set, FieldIndent)
	}
	return set
}

// Merge returns p with the fields set in other layered on top.
func (p Partial) Merge(other Partial) Partial {
	if other.Color != nil {
		p.Color = other.Color
	}
	if other.Style != nil {
		p.Style = other.Style
	}
	if other.Indent != nil {
		p.Indent = other.Indent
	}
	return p
}
