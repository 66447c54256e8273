package helpers

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/dbg/internal/logging"
)

// LogLevelFlag is the persistent flag selecting the diagnostics level.
const LogLevelFlag = "log-level"

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat, supportedFormats []OutputFormat) {
	formatNames := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		formatNames[i] = string(f)
	}

	*formatVar = string(defaultFormat)
	description := fmt.Sprintf("Output format (%s)", strings.Join(formatNames, ", "))
	cmd.Flags().VarP(&formatValue{target: formatVar, supported: supportedFormats}, "format", "o", description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// formatValue is a format flag rejecting unsupported formats at parse time.
type formatValue struct {
	target    *string
	supported []OutputFormat
}

var _ pflag.Value = (*formatValue)(nil)

func (v *formatValue) String() string {
	return *v.target
}

func (v *formatValue) Set(s string) error {
	if err := ValidateFormat(s, v.supported); err != nil {
		return err
	}
	*v.target = s
	return nil
}

func (v *formatValue) Type() string {
	return "format"
}

// AddWriteFlag adds a standard --write/-w flag.
func AddWriteFlag(cmd *cobra.Command, writeVar *bool) {
	cmd.Flags().BoolVarP(writeVar, "write", "w", false, "Write result to the source file instead of stdout")
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}

	supportedNames := make([]string, len(supported))
	for i, s := range supported {
		supportedNames[i] = string(s)
	}

	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(supportedNames, ", "))
}

// Logger builds the command logger from the --log-level flag, writing to
// the command's error stream.
func Logger(cmd *cobra.Command) zerolog.Logger {
	cfg := logging.DefaultConfig()
	if f := cmd.Flags().Lookup(LogLevelFlag); f != nil {
		cfg.Level = f.Value.String()
	}
	cfg.Output = cmd.ErrOrStderr()
	return logging.NewWithComponent(cfg, cmd.Name())
}
