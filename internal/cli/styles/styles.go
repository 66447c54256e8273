// Package styles implements the 'dbg styles' command.
package styles

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/dbg/internal/cli/helpers"
	"github.com/coral-mesh/dbg/internal/config"
	"github.com/coral-mesh/dbg/internal/highlight"
)

// Sample output line used for previews.
const (
	sampleTag  = "[main.go:12:7]"
	sampleExpr = `total(items, "EUR")`
	sampleVal  = `main.Price{Amount: 1299, Currency: "EUR"}`
)

// NewStylesCmd creates the styles command.
func NewStylesCmd() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List highlighting palettes",
		Long: `List the palettes accepted by the style setting. The active palette is
marked with *. With --preview each palette is shown on a sample line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := helpers.Logger(cmd)
			active := config.NewLayeredLoader(logger).Load(config.Partial{}).Config.Style
			return List(cmd.OutOrStdout(), active, preview, logger)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Show each palette on a sample line")

	return cmd
}

// List writes the palette names to w, marking active.
func List(w io.Writer, active string, preview bool, logger zerolog.Logger) error {
	r := lipgloss.NewRenderer(w)
	activeStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	nameStyle := r.NewStyle().Width(20)

	if !highlight.Valid(active) {
		logger.Warn().Str("style", active).Msg("Configured palette does not exist")
	}

	for _, name := range highlight.Styles() {
		marker := "  "
		label := nameStyle.Render(name)
		if name == active {
			marker = "* "
			label = activeStyle.Inherit(nameStyle).Render(name)
		}

		line := marker + label
		if preview {
			hl, err := highlight.New(name)
			if err != nil {
				return err
			}
			line += hl.Comment(sampleTag) + " " + hl.Code(sampleExpr) + " = " + hl.Code(sampleVal)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
