package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/dbg/internal/testutil"
)

func writeConf(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLayeredLoader_DefaultsOnly(t *testing.T) {
	clearEnv(t)
	loader := NewLayeredLoader(testutil.NewTestLogger(t)).WithPaths("", "")

	res := loader.Load(Partial{})

	assert.Equal(t, DefaultConfig(), res.Config)
	assert.Empty(t, res.Warnings)
	for _, field := range Fields() {
		assert.Equal(t, LayerDefaults, res.Source(field))
	}
}

func TestLayeredLoader_Precedence(t *testing.T) {
	clearEnv(t)
	user := writeConf(t, "[dbg]\ncolor = off\nstyle = vim\nindent = 8\n")
	project := writeConf(t, "[dbg]\nstyle = dracula\nindent = 4\n")
	t.Setenv("DBG_INDENT", "3")

	loader := NewLayeredLoader(testutil.NewTestLogger(t)).WithPaths(user, project)

	t.Run("without override", func(t *testing.T) {
		res := loader.Load(Partial{})

		assert.Equal(t, Config{Color: ColorOff, Style: "dracula", Indent: 3}, res.Config)
		assert.Equal(t, LayerUserFile, res.Source(FieldColor))
		assert.Equal(t, LayerProjectFile, res.Source(FieldStyle))
		assert.Equal(t, LayerEnv, res.Source(FieldIndent))
	})

	t.Run("override wins", func(t *testing.T) {
		res := loader.Load(Partial{Style: ptr("monokai"), Indent: ptr(6)})

		assert.Equal(t, Config{Color: ColorOff, Style: "monokai", Indent: 6}, res.Config)
		assert.Equal(t, LayerOverride, res.Source(FieldStyle))
		assert.Equal(t, LayerOverride, res.Source(FieldIndent))
	})
}

func TestLayeredLoader_DisabledLayers(t *testing.T) {
	clearEnv(t)
	t.Setenv("DBG_STYLE", "vim")
	project := writeConf(t, "indent = 4\n")

	loader := NewLayeredLoader(testutil.NewTestLogger(t)).WithPaths("", project)
	loader.DisableLayer(LayerEnv)
	loader.DisableLayer(LayerProjectFile)

	res := loader.Load(Partial{})
	assert.Equal(t, DefaultConfig(), res.Config)

	loader.EnableLayer(LayerEnv)
	res = loader.Load(Partial{})
	assert.Equal(t, "vim", res.Config.Style)
	assert.Equal(t, DefaultIndent, res.Config.Indent)
}

func TestLayeredLoader_MissingFilesAreSkipped(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	loader := NewLayeredLoader(testutil.NewTestLogger(t)).WithPaths(
		filepath.Join(dir, "missing-user.conf"),
		filepath.Join(dir, "missing-project.conf"),
	)

	res := loader.Load(Partial{})
	assert.Equal(t, DefaultConfig(), res.Config)
	assert.Empty(t, res.Warnings)
}

func TestLayeredLoader_WarningsAreLogged(t *testing.T) {
	clearEnv(t)
	project := writeConf(t, "[dbg]\nindent = -1\nstyle = vim\n")

	logger, buf := testutil.NewCaptureLogger(zerolog.WarnLevel)
	loader := NewLayeredLoader(logger).WithPaths("", project)

	res := loader.Load(Partial{Color: ptr(ColorMode("purple"))})

	assert.Equal(t, DefaultIndent, res.Config.Indent)
	assert.Equal(t, "vim", res.Config.Style)
	assert.Equal(t, ColorAuto, res.Config.Color)
	assert.Len(t, res.Warnings, 2)
	assert.Contains(t, buf.String(), `"layer":"project"`)
	assert.Contains(t, buf.String(), `"layer":"override"`)
}

func TestPartial_MergeAndApply(t *testing.T) {
	base := Partial{Style: ptr("vim"), Indent: ptr(2)}
	merged := base.Merge(Partial{Indent: ptr(4)})

	cfg := DefaultConfig()
	set := merged.Apply(&cfg)

	assert.Equal(t, []string{FieldStyle, FieldIndent}, set)
	assert.Equal(t, Config{Color: ColorAuto, Style: "vim", Indent: 4}, cfg)
}

func TestUseColor(t *testing.T) {
	clearEnv(t)
	var buf bytes.Buffer

	assert.True(t, Config{Color: ColorOn}.UseColor(&buf))
	assert.False(t, Config{Color: ColorOff}.UseColor(&buf))
	assert.False(t, Config{Color: ColorAuto}.UseColor(&buf), "buffers are not terminals")

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, Config{Color: ColorAuto}.UseColor(f), "regular files are not terminals")

	t.Setenv("NO_COLOR", "1")
	assert.True(t, Config{Color: ColorOn}.UseColor(&buf), "explicit on ignores NO_COLOR")
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"color"`)
	assert.Contains(t, out, `"indent"`)
	assert.Contains(t, out, `"monokai"`)
	assert.Contains(t, out, `"minimum": 1`)
}
