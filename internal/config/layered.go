package config

import (
	"errors"
	"io/fs"

	"github.com/rs/zerolog"
)

// Layer represents a configuration layer source.
type Layer string

const (
	// LayerDefaults represents built-in default values.
	LayerDefaults Layer = "defaults"

	// LayerUserFile represents the per-user config file.
	LayerUserFile Layer = "user"

	// LayerProjectFile represents the config file in the working directory.
	LayerProjectFile Layer = "project"

	// LayerEnv represents configuration from environment variables.
	LayerEnv Layer = "env"

	// LayerOverride represents values set programmatically.
	LayerOverride Layer = "override"
)

// Resolved is a configuration together with the layer each field came from.
type Resolved struct {
	Config   Config
	Sources  map[string]Layer
	Warnings []error
}

// Source returns the layer that set the named field.
func (r Resolved) Source(field string) Layer {
	if l, ok := r.Sources[field]; ok {
		return l
	}
	return LayerDefaults
}

// LayeredLoader provides layered configuration loading.
// Configuration is loaded in the following order:
// 1. Defaults - built-in values
// 2. User file - <user config dir>/debug/dbg.conf
// 3. Project file - ./dbg.conf
// 4. Environment - DBG_* variables
// 5. Override - values set programmatically
//
// Each layer overrides only the fields it sets explicitly.
type LayeredLoader struct {
	enabledLayers map[Layer]bool
	userPath      string
	projectPath   string
	logger        zerolog.Logger
}

// NewLayeredLoader creates a loader reading the standard file locations.
// All layers are enabled.
func NewLayeredLoader(logger zerolog.Logger) *LayeredLoader {
	return &LayeredLoader{
		enabledLayers: map[Layer]bool{
			LayerDefaults:    true,
			LayerUserFile:    true,
			LayerProjectFile: true,
			LayerEnv:         true,
			LayerOverride:    true,
		},
		userPath:    UserConfigPath(),
		projectPath: ProjectConfigPath(),
		logger:      logger,
	}
}

// WithPaths replaces the config file locations. An empty path disables the
// corresponding file layer.
func (l *LayeredLoader) WithPaths(userPath, projectPath string) *LayeredLoader {
	l.userPath = userPath
	l.projectPath = projectPath
	return l
}

// EnableLayer enables a specific configuration layer.
func (l *LayeredLoader) EnableLayer(layer Layer) {
	l.enabledLayers[layer] = true
}

// DisableLayer disables a specific configuration layer.
func (l *LayeredLoader) DisableLayer(layer Layer) {
	l.enabledLayers[layer] = false
}

// Paths returns the user and project config file locations.
func (l *LayeredLoader) Paths() (userPath, projectPath string) {
	return l.userPath, l.projectPath
}

// Load resolves the configuration. It never fails: unreadable files, bad
// values and unknown keys become warnings, logged and returned.
func (l *LayeredLoader) Load(override Partial) Resolved {
	res := Resolved{
		Config:  Config{},
		Sources: make(map[string]Layer),
	}

	// Layer 1: Defaults
	if l.enabledLayers[LayerDefaults] {
		res.Config = DefaultConfig()
	}

	// Layers 2 and 3: Files
	l.mergeFromFile(&res, LayerUserFile, l.userPath)
	l.mergeFromFile(&res, LayerProjectFile, l.projectPath)

	// Layer 4: Environment
	if l.enabledLayers[LayerEnv] {
		p, errs := LoadFromEnv()
		errs = append(errs, p.Validate()...)
		l.warn(&res, LayerEnv, errs)
		l.apply(&res, LayerEnv, p)
	}

	// Layer 5: Override
	if l.enabledLayers[LayerOverride] {
		l.warn(&res, LayerOverride, override.Validate())
		l.apply(&res, LayerOverride, override)
	}

	return res
}

// mergeFromFile applies one config file layer. A missing file skips the layer.
func (l *LayeredLoader) mergeFromFile(res *Resolved, layer Layer, path string) {
	if !l.enabledLayers[layer] || path == "" {
		return
	}

	p, warnings, err := LoadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.warn(res, layer, []error{err})
		}
		return
	}

	l.warn(res, layer, warnings)
	l.apply(res, layer, p)
}

func (l *LayeredLoader) apply(res *Resolved, layer Layer, p Partial) {
	for _, field := range p.Apply(&res.Config) {
		res.Sources[field] = layer
	}
}

func (l *LayeredLoader) warn(res *Resolved, layer Layer, errs []error) {
	for _, err := range errs {
		l.logger.Warn().Err(err).Str("layer", string(layer)).Msg("Ignoring config value")
		res.Warnings = append(res.Warnings, err)
	}
}
