// Package cli implements the dbg command-line tool.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/dbg/internal/cli/calls"
	"github.com/coral-mesh/dbg/internal/cli/config"
	"github.com/coral-mesh/dbg/internal/cli/helpers"
	"github.com/coral-mesh/dbg/internal/cli/rewrite"
	"github.com/coral-mesh/dbg/internal/cli/styles"
	"github.com/coral-mesh/dbg/pkg/version"
)

// NewRootCmd creates the dbg command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbg",
		Short: "dbg - print Go expressions next to their values",
		Long: `Companion tool for the github.com/coral-mesh/dbg/pkg/dbg package.

Calls such as dbg.Val(x + 1) print "[file:line:col] x + 1 = 5" and return
their argument. This tool inspects how calls are matched to source, stamps
calls with literal locations for binaries shipped without sources, and
shows the resolved output configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String(helpers.LogLevelFlag, "warn", "Diagnostics level (trace, debug, info, warn, error, disabled)")

	cmd.AddCommand(calls.NewCallsCmd())
	cmd.AddCommand(rewrite.NewStampCmd())
	cmd.AddCommand(rewrite.NewUnstampCmd())
	cmd.AddCommand(config.NewConfigCmd())
	cmd.AddCommand(styles.NewStylesCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if format != string(helpers.FormatTable) {
				formatter, err := helpers.NewFormatter(helpers.OutputFormat(format))
				if err != nil {
					return err
				}
				return formatter.Format(info, cmd.OutOrStdout())
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dbg version %s\nGit commit: %s\nBuild date: %s\nGo version: %s\n",
				info.Version, info.GitCommit, info.BuildDate, info.GoVersion)
			return err
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, helpers.AllFormats)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
