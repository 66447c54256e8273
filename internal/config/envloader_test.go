package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"DBG_COLOR", "DBG_STYLE", "DBG_INDENT", "NO_COLOR"} {
		t.Setenv(name, "")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DBG_COLOR", "off")
	t.Setenv("DBG_STYLE", "friendly")
	t.Setenv("DBG_INDENT", "4")

	p, errs := LoadFromEnv()
	require.Empty(t, errs)

	require.NotNil(t, p.Color)
	assert.Equal(t, ColorOff, *p.Color)
	require.NotNil(t, p.Style)
	assert.Equal(t, "friendly", *p.Style)
	require.NotNil(t, p.Indent)
	assert.Equal(t, 4, *p.Indent)
}

func TestLoadFromEnv_Unset(t *testing.T) {
	clearEnv(t)

	p, errs := LoadFromEnv()
	assert.Empty(t, errs)
	assert.True(t, p.Empty())
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DBG_COLOR", "rainbow")
	t.Setenv("DBG_INDENT", "four")
	t.Setenv("DBG_STYLE", "vim")

	p, errs := LoadFromEnv()
	assert.Len(t, errs, 2)
	assert.Nil(t, p.Color)
	assert.Nil(t, p.Indent)
	require.NotNil(t, p.Style)
	assert.Equal(t, "vim", *p.Style)
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{in: "auto", want: ColorAuto},
		{in: "AUTO", want: ColorAuto},
		{in: "on", want: ColorOn},
		{in: "true", want: ColorOn},
		{in: "1", want: ColorOn},
		{in: "yes", want: ColorOn},
		{in: "off", want: ColorOff},
		{in: "False", want: ColorOff},
		{in: "0", want: ColorOff},
		{in: "maybe", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
