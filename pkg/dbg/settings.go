package dbg

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/dbg/internal/config"
	"github.com/coral-mesh/dbg/internal/highlight"
	"github.com/coral-mesh/dbg/internal/logging"
)

// Config is the resolved output configuration.
type Config = config.Config

// ColorMode selects when output is colored.
type ColorMode = config.ColorMode

// Color modes.
const (
	ColorAuto = config.ColorAuto
	ColorOn   = config.ColorOn
	ColorOff  = config.ColorOff
)

// settings is the process-wide configuration. Files and the environment
// are read on first use; overrides take effect immediately.
type settings struct {
	once sync.Once

	mu       sync.RWMutex
	base     config.Config
	override config.Partial
	cfg      config.Config
	out      io.Writer
	logger   zerolog.Logger
	hl       *highlight.Highlighter
	warned   map[string]bool
}

var std = &settings{
	out:    os.Stderr,
	logger: logging.NewWithComponent(logging.DefaultConfig(), "dbg"),
	warned: make(map[string]bool),
}

func (s *settings) init() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.load()
	})
}

// load reads every layer below the override. Callers hold mu.
func (s *settings) load() {
	loader := config.NewLayeredLoader(s.logger)
	loader.DisableLayer(config.LayerOverride)
	s.base = loader.Load(config.Partial{}).Config
	s.apply()
}

// apply recomputes the effective configuration. Callers hold mu.
func (s *settings) apply() {
	cfg := s.base
	s.override.Apply(&cfg)
	s.cfg = cfg
}

func (s *settings) update(p config.Partial) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, err := range p.Validate() {
		s.logger.Warn().Err(err).Str("layer", string(config.LayerOverride)).Msg("Ignoring configuration override")
	}
	s.override = s.override.Merge(p)
	s.apply()
}

// snapshot returns what one invocation needs.
func (s *settings) snapshot() (config.Config, io.Writer, zerolog.Logger) {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.out, s.logger
}

// highlighter returns the highlighter of the active style, or nil when the
// style is unknown. An unknown style, or a fragment the style cannot color,
// is reported once per name.
func (s *settings) highlighter(style string) *highlight.Highlighter {
	s.mu.RLock()
	hl := s.hl
	s.mu.RUnlock()
	if hl != nil && hl.Name() == style {
		return hl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hl != nil && s.hl.Name() == style {
		return s.hl
	}
	hl, err := highlight.New(style, highlight.WithErrorHandler(func(err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.warnLocked("tokenize/"+style, err)
	}))
	if err != nil {
		s.warnLocked(style, err)
		return nil
	}
	s.hl = hl
	return hl
}

// warnLocked logs a colorless fallback once per key. Caller holds mu.
func (s *settings) warnLocked(key string, err error) {
	if s.warned[key] {
		return
	}
	s.warned[key] = true
	s.logger.Warn().Err(err).Msg("Printing without colors")
}

// SetColor overrides the color mode.
func SetColor(mode ColorMode) {
	std.update(config.Partial{Color: &mode})
}

// SetStyle overrides the highlighting palette. Unknown names print
// uncolored output and log one warning.
func SetStyle(name string) {
	std.update(config.Partial{Style: &name})
}

// SetIndent overrides the number of spaces per nesting level. Values below
// one are ignored with a warning.
func SetIndent(n int) {
	std.update(config.Partial{Indent: &n})
}

// Settings returns the configuration in effect.
func Settings() Config {
	cfg, _, _ := std.snapshot()
	return cfg
}

// Reset drops all overrides and reads the configuration files and the
// environment again.
func Reset() {
	std.init()
	std.mu.Lock()
	defer std.mu.Unlock()
	std.override = config.Partial{}
	std.load()
}

// SetOutput redirects output to w and returns the previous writer. A nil
// writer restores stderr.
func SetOutput(w io.Writer) io.Writer {
	if w == nil {
		w = os.Stderr
	}
	std.mu.Lock()
	defer std.mu.Unlock()
	prev := std.out
	std.out = w
	return prev
}

// SetLogger replaces the logger used for diagnostics about dbg itself.
func SetLogger(logger zerolog.Logger) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.logger = logger
}
