package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sldlayout/pkg/params"
)

// paramsCommand creates the params command printing layout parameters.
func (c *CLI) paramsCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the layout parameters as TOML",
		Long: `Print the layout parameters as TOML.

Without flags the defaults are printed. The output is a valid parameter file
for --params: save it, edit it, and pass it back to layout, cells or serve.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.params(cmd)
			if err != nil {
				return err
			}
			data, err := params.EncodeTOML(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
