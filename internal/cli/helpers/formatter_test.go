package helpers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type row struct {
	Name  string   `header:"NAME" json:"name" yaml:"name"`
	Value int      `header:"VALUE" json:"value" yaml:"value"`
	Tags  []string `header:"TAGS" json:"tags" yaml:"tags"`
	Extra string   `json:"-" yaml:"-"`
}

var rows = []row{
	{Name: "a", Value: 1, Tags: []string{"x", "y"}},
	{Name: "bb", Value: 22},
}

func TestNewFormatter(t *testing.T) {
	for _, f := range AllFormats {
		t.Run(string(f), func(t *testing.T) {
			got, err := NewFormatter(f)
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}

	_, err := NewFormatter("csv")
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(rows, &buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "VALUE", "TAGS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"a", "1", "x,", "y"}, strings.Fields(lines[1]))
	assert.Equal(t, strings.Index(lines[0], "VALUE"), strings.Index(lines[1], "1"))
	assert.Equal(t, []string{"bb", "22"}, strings.Fields(lines[2]))

	buf.Reset()
	require.NoError(t, (&TableFormatter{}).Format([]row{}, &buf))
	assert.Empty(t, buf.String())

	assert.Error(t, (&TableFormatter{}).Format(rows[0], &buf))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(rows, &buf))

	var got []row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "bb", got[1].Name)
	assert.Contains(t, buf.String(), "\n  {")
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(rows, &buf))

	var got []row
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"x", "y"}, got[0].Tags)
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("yaml", AllFormats))
	err := ValidateFormat("xml", AllFormats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, yaml")
}

func TestAddFormatFlag(t *testing.T) {
	var format string
	cmd := &cobra.Command{Use: "x"}
	AddFormatFlag(cmd, &format, FormatTable, AllFormats)

	assert.Equal(t, "table", format)
	require.NoError(t, cmd.Flags().Parse([]string{"-o", "json"}))
	assert.Equal(t, "json", format)

	err := cmd.Flags().Parse([]string{"--format", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
	assert.Equal(t, "json", format)
}
