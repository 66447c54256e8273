// Package config implements the 'dbg config' command.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/dbg/internal/cli/helpers"
	"github.com/coral-mesh/dbg/internal/config"
)

// Row is one resolved configuration field.
type Row struct {
	Field  string `header:"FIELD" json:"field" yaml:"field"`
	Value  string `header:"VALUE" json:"value" yaml:"value"`
	Source string `header:"SOURCE" json:"source" yaml:"source"`
}

// Report is the structured form of the resolved configuration.
type Report struct {
	Config   config.Config     `json:"config" yaml:"config"`
	Sources  map[string]string `json:"sources" yaml:"sources"`
	Files    Files             `json:"files" yaml:"files"`
	Warnings []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Files are the config file locations consulted.
type Files struct {
	User    string `json:"user" yaml:"user"`
	Project string `json:"project" yaml:"project"`
}

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	var (
		format string
		schema bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved output configuration",
		Long: `Show the configuration dbg resolves in the current directory and the
layer each value comes from.

Configuration Priority:
  1. DBG_COLOR, DBG_STYLE, DBG_INDENT environment variables (highest)
  2. Project config (./dbg.conf)
  3. User config (<user config dir>/debug/dbg.conf)
  4. Built-in defaults

Calls to dbg.SetColor, dbg.SetStyle and dbg.SetIndent take precedence over
all of them at run time.

With --schema the JSON Schema of the configuration is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema {
				data, err := config.JSONSchema()
				if err != nil {
					return fmt.Errorf("failed to generate schema: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			loader := config.NewLayeredLoader(helpers.Logger(cmd))
			res := loader.Load(config.Partial{})

			if format != string(helpers.FormatTable) {
				formatter, err := helpers.NewFormatter(helpers.OutputFormat(format))
				if err != nil {
					return err
				}
				return formatter.Format(NewReport(loader, res), cmd.OutOrStdout())
			}
			formatter, err := helpers.NewFormatter(helpers.FormatTable)
			if err != nil {
				return err
			}
			return formatter.Format(Rows(res), cmd.OutOrStdout())
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, helpers.AllFormats)
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the JSON Schema of the configuration")

	return cmd
}

// Rows lists the resolved fields with their source layer.
func Rows(res config.Resolved) []Row {
	values := map[string]string{
		config.FieldColor:  string(res.Config.Color),
		config.FieldStyle:  res.Config.Style,
		config.FieldIndent: fmt.Sprint(res.Config.Indent),
	}
	rows := make([]Row, 0, len(values))
	for _, field := range config.Fields() {
		rows = append(rows, Row{
			Field:  field,
			Value:  values[field],
			Source: string(res.Source(field)),
		})
	}
	return rows
}

// NewReport builds the structured form of res.
func NewReport(loader *config.LayeredLoader, res config.Resolved) Report {
	user, project := loader.Paths()
	report := Report{
		Config:  res.Config,
		Sources: make(map[string]string),
		Files:   Files{User: user, Project: project},
	}
	for _, field := range config.Fields() {
		report.Sources[field] = string(res.Source(field))
	}
	for _, w := range res.Warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}
	return report
}
