package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <manifest>",
		Short: "Build the bundle and release described by a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pathOptions(cmd)
			opts.Clean, _ = cmd.Flags().GetBool("clean")
			opts.NoConfirm, _ = cmd.Flags().GetBool("no-confirm")

			result, err := c.app.Build(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("log-json"); jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			printSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	addPathFlags(cmd)
	cmd.Flags().Bool("clean", false, "Remove the work and bundle directories before building")
	cmd.Flags().BoolP("no-confirm", "y", false, "Replace an existing release without asking")
	return cmd
}

func printSummary(w io.Writer, result domain.BuildResult) {
	out := output.New(w)
	check := out.String(style.Check).Foreground(out.Color(string(style.Green))).Bold()
	arrow := out.String(style.Arrow).Foreground(out.Color(string(style.Ash)))

	_, _ = fmt.Fprintf(out, "%s %s built in %s (%d modules, %d files changed)\n",
		check, result.Name, result.Duration.Round(time.Millisecond), result.Modules, result.Changed)
	_, _ = fmt.Fprintf(out, "  %s bundle  %s\n", arrow, result.BundleDir)
	_, _ = fmt.Fprintf(out, "  %s release %s\n", arrow, result.ArchivePath)

	if n := len(result.Warnings); n > 0 {
		warn := out.String(style.Warning).Foreground(out.Color(string(style.Yellow))).Bold()
		_, _ = fmt.Fprintf(out, "%s %d warning(s), see the log above\n", warn, n)
	}
}
