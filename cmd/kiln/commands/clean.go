package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <manifest>",
		Short: "Remove the work and bundle directories of a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Clean(cmd.Context(), args[0], pathOptions(cmd))
		},
	}

	addPathFlags(cmd)
	return cmd
}
