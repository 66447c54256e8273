// Package calls implements the 'dbg calls' command.
package calls

import (
	"context"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coral-mesh/dbg/internal/callmatch"
	"github.com/coral-mesh/dbg/internal/cli/helpers"
	"github.com/coral-mesh/dbg/internal/entry"
	"github.com/coral-mesh/dbg/internal/source"
)

// Row is one instrumentation call of a file.
type Row struct {
	File   string   `header:"FILE" json:"file" yaml:"file"`
	Line   int      `header:"LINE" json:"line" yaml:"line"`
	Col    int      `header:"COL" json:"col" yaml:"col"`
	Call   string   `header:"CALL" json:"call" yaml:"call"`
	Order  int      `header:"ORDER" json:"order" yaml:"order"`
	Args   []string `header:"ARGS" json:"args" yaml:"args"`
	Spread bool     `json:"spread,omitempty" yaml:"spread,omitempty"`
}

// NewCallsCmd creates the calls command.
func NewCallsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "calls FILE...",
		Short: "List the instrumentation calls of Go source files",
		Long: `List every call to a dbg entry point with its position, evaluation
order and argument text, as seen when matching a call at run time.

ORDER ranks the calls of a file in evaluation order: the arguments of a call
are evaluated before the call itself.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := Collect(cmd.Context(), args)
			if err != nil {
				return err
			}
			formatter, err := helpers.NewFormatter(helpers.OutputFormat(format))
			if err != nil {
				return err
			}
			return formatter.Format(rows, cmd.OutOrStdout())
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, helpers.AllFormats)

	return cmd
}

// Collect indexes the files concurrently and returns their calls, file by
// file in argument order.
func Collect(ctx context.Context, paths []string) ([]Row, error) {
	indexer := source.NewIndexer(source.NewLoader(), entry.Target(""))
	results := make([][]Row, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := indexer.Index(path)
			if err != nil {
				return err
			}
			results[i] = rows(path, idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := []Row{}
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func rows(path string, idx *source.Index) []Row {
	out := make([]Row, 0, len(idx.Calls))
	for _, c := range idx.Calls {
		exprs, err := callmatch.Extract(idx.File.Text, c)
		if err != nil {
			exprs = nil
		}
		call := c.Name
		if c.Qualifier != "" {
			call = c.Qualifier + "." + c.Name
		}
		out = append(out, Row{
			File:   path,
			Line:   c.Line,
			Col:    c.Col,
			Call:   call,
			Order:  c.Order,
			Args:   exprs,
			Spread: c.Spread,
		})
	}
	return out
}
