// Package cli implements the sldlayout command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/buildinfo"
	"github.com/matzehuels/sldlayout/pkg/cache"
	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sldlayout"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "sldlayout",
		Short:        "sldlayout lays out electrical single-line diagrams",
		Long:         `sldlayout computes deterministic single-line diagram layouts for substations: busbars, cells, switching equipment and the snake lines joining voltage levels.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cellsCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.paramsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sldlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the parameter flags shared by the layout commands.
type layoutFlags struct {
	paramsFile   string
	strategy     string
	handleShunts bool
	noStack      bool
	adaptHeight  bool
	strict       bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.paramsFile, "params", "p", "", "layout parameter file (.toml, .yaml)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "position strategy: clustering (default), free")
	cmd.Flags().BoolVar(&f.handleShunts, "shunts", false, "keep cells joined by shunts side by side")
	cmd.Flags().BoolVar(&f.noStack, "no-stack", false, "draw one disconnector per busbar instead of stacking")
	cmd.Flags().BoolVar(&f.adaptHeight, "adapt-height", false, "size extern cells to their content")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on unhandled intern cell patterns")
	registerStrategyCompletion(cmd)
	registerParamsFileCompletion(cmd)
}

// params builds the layout parameters: defaults, then the parameter file,
// then the explicitly set flags.
func (f *layoutFlags) params(cmd *cobra.Command) (params.Parameters, error) {
	p := params.Default()
	if f.paramsFile != "" {
		var err error
		if p, err = params.Load(f.paramsFile); err != nil {
			return p, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		p.PositionStrategy = f.strategy
	}
	if flags.Changed("shunts") {
		p.HandleShunts = f.handleShunts
	}
	if flags.Changed("no-stack") {
		p.Stack = !f.noStack
	}
	if flags.Changed("adapt-height") {
		p.AdaptCellHeightToContent = f.adaptHeight
	}
	if flags.Changed("strict") {
		p.ExceptionIfPatternNotHandled = f.strict
	}
	return p, p.Validate()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// readInput reads the topology document at path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// outputPath derives the default output file of input with the given suffix.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	if input == "-" {
		return "topology" + suffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
