package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/params"
	"github.com/matzehuels/sldlayout/pkg/pipeline"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sldlayout.

  $ source <(sldlayout completion bash)
  $ sldlayout completion zsh > "${fpath[1]}/_sldlayout"
  $ sldlayout completion fish > ~/.config/fish/completions/sldlayout.fish
  PS> sldlayout completion powershell | Out-String | Invoke-Expression

Strategies and output formats complete as flag values.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// fixedCompletion completes a flag from a fixed list of values.
func fixedCompletion(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func registerStrategyCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("strategy", fixedCompletion(params.StrategyClustering, params.StrategyFree))
}

func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPNG))
}

func registerParamsFileCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("params", func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{"toml", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}
