package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/pipeline"
)

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [topology.json]",
		Short: "Compute the single-line diagram layout of a substation",
		Long: `Compute the single-line diagram layout of a substation.

The layout command takes a JSON topology (voltage levels, multi-terminal
equipment and lines) and computes the position of every busbar, switch and
feeder, the cell structure and the snake lines between voltage levels. The
output is a layout.json file. Use "-" to read the topology from stdin and
"-o -" to write the layout to stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.params(cmd)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Params: &p, Refresh: refresh}
			return c.runLayout(cmd.Context(), args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	flags.register(cmd)

	return cmd
}

// runLayout reads the topology, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
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

	spinner := newSpinner(ctx, "Computing layout")
	runner.Hooks = spinner
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" {
		_, err := os.Stdout.Write(result.Layout)
		return err
	}

	path := outputPath(input, output, ".layout.json")
	if err := os.WriteFile(path, result.Layout, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(result.Stats.Panels, result.Stats.Nodes, result.Stats.Cells, result.CacheInfo.LayoutHit)
	printKeyValue("Run", result.RunID)
	if n := spinner.Warnings(); n > 0 {
		printWarning("%d cells drawn with a fallback shape (run with -v for details)", n)
	}
	printNewline()
	printNextStep("Inspect cells", "sldlayout cells "+input)

	return nil
}
