// Package rewrite implements the 'dbg stamp' and 'dbg unstamp' commands.
package rewrite

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coral-mesh/dbg/internal/cli/helpers"
	"github.com/coral-mesh/dbg/internal/entry"
	"github.com/coral-mesh/dbg/internal/safe"
	"github.com/coral-mesh/dbg/internal/source"
	"github.com/coral-mesh/dbg/internal/stamp"
)

// transform rewrites one file. name is the path as given on the command line.
type transform func(name string, file *source.File) (stamp.Result, error)

// NewStampCmd creates the stamp command.
func NewStampCmd() *cobra.Command {
	return newCmd(&cobra.Command{
		Use:   "stamp [-w] FILE...",
		Short: "Rewrite dbg calls to carry their own location",
		Long: `Rewrite dbg.Dbg and dbg.Val calls into dbg.At and dbg.ValAt with a literal
dbg.Site holding the file, line, column and argument text of each call.

Stamped calls print their location without reading source files at run
time, which suits binaries deployed without their sources. The file name
recorded is the path as given on the command line.

Without -w the rewritten sources are printed to stdout.`,
	}, func(name string, file *source.File) (stamp.Result, error) {
		return stamp.Stamp(filepath.ToSlash(filepath.Clean(name)), file, entry.Target(""))
	})
}

// NewUnstampCmd creates the unstamp command.
func NewUnstampCmd() *cobra.Command {
	return newCmd(&cobra.Command{
		Use:   "unstamp [-w] FILE...",
		Short: "Undo stamp",
		Long: `Rewrite dbg.At and dbg.ValAt calls whose site is a dbg.Site literal back
into dbg.Dbg and dbg.Val.

Without -w the rewritten sources are printed to stdout.`,
	}, func(_ string, file *source.File) (stamp.Result, error) {
		return stamp.Unstamp(file, entry.Target(""))
	})
}

func newCmd(cmd *cobra.Command, fn transform) *cobra.Command {
	var write bool

	cmd.Args = cobra.MinimumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger := helpers.Logger(cmd)

		results, err := Run(cmd.Context(), args, fn)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, res := range results {
			if !write {
				if _, err := out.Write(res.Output); err != nil {
					return err
				}
				continue
			}
			if !res.Changed() {
				continue
			}
			if err := safe.WriteFile(res.Path, res.Output); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[i], err)
			}
			logRewrite(logger, args[i], res)
			if _, err := fmt.Fprintf(out, "%s: %d calls\n", args[i], res.Calls); err != nil {
				return err
			}
		}
		return nil
	}

	helpers.AddWriteFlag(cmd, &write)

	return cmd
}

// Run applies fn to every file concurrently. Results are in argument order.
func Run(ctx context.Context, paths []string, fn transform) ([]stamp.Result, error) {
	loader := source.NewLoader()
	results := make([]stamp.Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := loader.Load(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			res, err := fn(path, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func logRewrite(logger zerolog.Logger, path string, res stamp.Result) {
	logger.Info().
		Str("file", path).
		Int("calls", res.Calls).
		Msg("Rewrote source file")
}
