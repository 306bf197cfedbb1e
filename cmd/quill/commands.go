package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quill/pkg/layout"
	"quill/pkg/render"
)

// Version is the application version, set at build time with
// -ldflags "-X main.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of quill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "quill version %s\n", Version)
			return nil
		},
	}
}

func newLayoutCmd(a *app) *cobra.Command {
	var passes int
	cmd := &cobra.Command{
		Use:   "layout <file.html>",
		Short: "Lay out an HTML file and print the box tree",
		Long: `Lay out an HTML file and print the resulting box tree, either as a
tree dump or as YAML geometry. With --passes > 1 the document is laid out
again over the same layout cache, which must find nothing to do.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			res, err := a.layout(doc, passes)
			if err != nil && !errors.Is(err, layout.ErrSettlementNotConverged) {
				return err
			}
			if err != nil {
				a.log.Warn("scrollbars did not settle", zap.Error(err))
			}
			out := cmd.OutOrStdout()
			switch a.cfg.Output.Format {
			case "yaml":
				return writeYAML(out, exportGeometry(doc, res))
			default:
				_, err := fmt.Fprint(out, res.Dump())
				return err
			}
		},
	}
	cmd.Flags().IntVar(&passes, "passes", 1, "number of layout passes over one cache")
	cmd.Flags().StringP("format", "f", "tree", "output format: tree or yaml")
	_ = a.v.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render <file.html>",
		Short: "Lay out an HTML file and paint it to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			res, err := a.layout(doc, 1)
			if err != nil && !errors.Is(err, layout.ErrSettlementNotConverged) {
				return err
			}
			r := render.NewRenderer(a.cfg.Viewport.Width, a.cfg.Viewport.Height, a.cfg.Text.Fonts)
			r.SetImages(a.images)
			r.Render(doc, res)
			if err := r.SavePNG(output); err != nil {
				return err
			}
			a.log.Info("rendered", zap.String("input", args[0]), zap.String("output", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.png", "PNG file to write")
	return cmd
}
