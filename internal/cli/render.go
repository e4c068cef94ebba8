package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/render"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
	"github.com/matzehuels/floorview/pkg/source"
)

// Output formats for the render command.
const (
	formatSVG      = "svg"
	formatJSON     = "json"
	formatTerminal = "terminal"
)

type renderOptions struct {
	format   string
	width    float64
	height   float64
	zoom     int
	output   string
	links    string
	noLabels bool
	plain    bool
	input    string
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOptions{format: formatSVG, width: 800, height: 600}

	cmd := &cobra.Command{
		Use:   "render [floor-id]",
		Short: "Render a floor as SVG, JSON or text",
		Long: `Render a floor at its home position in a viewport of the given size.

The floor is read from the configured source, or from a layout file with
--input. The output format is inferred from the -o extension when --format
is not set.`,
		Example: `  floorview render ground -o ground.svg
  floorview render ground --format json --width 390 --height 844
  floorview render --input attic.toml --format terminal`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && opts.output != "" {
				if f := formatFromPath(opts.output); f != "" {
					opts.format = f
				}
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return c.runRender(cmd.Context(), cmd, id, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: svg, json, terminal")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "viewport height in pixels")
	cmd.Flags().IntVar(&opts.zoom, "zoom", 0, "zoom percentage (default: home scale for the viewport)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.links, "links", "", "link rooms to <base>/rooms/<id> (svg only)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit room names (svg only)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors (terminal only)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read the floor from a .toml or .json layout file")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatSVG, formatJSON, formatTerminal}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, id string, opts renderOptions) error {
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("viewport must be positive, got %vx%v", opts.width, opts.height)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var floor *floorplan.Floor
	switch {
	case opts.input != "":
		floor, err = source.ReadFile(opts.input)
		if err == nil {
			err = floor.Validate()
		}
	case id != "":
		src, oerr := c.openSource(ctx, cfg)
		if oerr != nil {
			return oerr
		}
		defer src.Close()
		floor, err = c.loadFloor(ctx, cmd, src, id)
	default:
		return fmt.Errorf("floor id or --input required")
	}
	if err != nil {
		return err
	}

	model := viewer.NewModel(floor, geom.Size{Width: opts.width, Height: opts.height},
		viewer.WithLogger(c.Logger),
		viewer.WithDefaults(cfg.Viewer.Defaults()),
	)
	defer model.Close()
	if opts.zoom > 0 {
		st := model.State()
		model.Handle(viewer.ZoomEvent{Factor: float64(opts.zoom) / 100 / st.Transform.Scale})
	}

	out, err := renderFrame(render.NewFrame(model.State()), opts)
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, out)
}

func renderFrame(f render.Frame, opts renderOptions) ([]byte, error) {
	switch strings.ToLower(opts.format) {
	case formatSVG:
		var svgOpts []render.SVGOption
		if opts.links != "" {
			svgOpts = append(svgOpts, render.WithLinks(opts.links))
		}
		if opts.noLabels {
			svgOpts = append(svgOpts, render.WithoutLabels())
		}
		return render.RenderSVG(f, svgOpts...), nil
	case formatJSON:
		return render.RenderJSON(f)
	case formatTerminal:
		var termOpts []render.TermOption
		if opts.plain {
			termOpts = append(termOpts, render.WithPlain())
		}
		return []byte(render.RenderTerminal(f, termOpts...) + "\n"), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown format %q", opts.format)
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return formatSVG
	case ".json":
		return formatJSON
	case ".txt":
		return formatTerminal
	}
	return ""
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	p := printer{w: cmd.ErrOrStderr()}
	p.success("Rendered %s", filepath.Base(path))
	p.file(path)
	return nil
}
