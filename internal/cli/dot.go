package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/pipeline"
)

// dotCommand creates the dot command that renders the cell structure.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output   string
		formats  string
		detailed bool
		noCache  bool
		refresh  bool
		flags    layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "dot [topology.json]",
		Short: "Render the detected cells as a Graphviz debug view",
		Long: `Render the detected cells as a Graphviz debug view.

Each voltage level becomes a cluster, each cell a nested cluster holding its
nodes. Multi-terminal equipment and lines are drawn as dotted links. Use
--detailed to print the block tree of every cell.

Formats: dot, svg (default), png. Several formats may be comma-separated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.params(cmd)
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Params:   &p,
				Formats:  parseFormats(formats),
				Detailed: detailed,
				Refresh:  refresh,
			}
			return c.runDOT(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file without extension (default: <input>.cells)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats: dot, svg, png")
	registerFormatCompletion(cmd)
	cmd.Flags().BoolVarP(&detailed, "detailed", "d", false, "add block trees to cell labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runDOT(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Input = data
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Rendering cells")
	runner.Hooks = spinner
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	base := outputPath(input, output, ".cells")
	printSuccess("Rendered %d formats", len(opts.Formats))
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.Panels, result.Stats.Nodes, result.Stats.Cells, result.CacheInfo.RenderHit)

	return nil
}
