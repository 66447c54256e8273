package config

// Built-in defaults.
const (
	DefaultColor  = ColorAuto
	DefaultStyle  = "monokai"
	DefaultIndent = 2
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Color:  DefaultColor,
		Style:  DefaultStyle,
		Indent: DefaultIndent,
	}
}
