// Package commands implements the CLI commands for the kiln bundler.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, manifestPath string, opts domain.BuildOptions) (domain.BuildResult, error)
	Clean(ctx context.Context, manifestPath string, opts domain.BuildOptions) error
	ConfigureLogging(jsonOutput, verbose bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "Bundle a Python application and its dependencies into a self-contained release",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("log-json", false, "Write log records and the build result as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug log records")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		jsonOutput, _ := cmd.Flags().GetBool("log-json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		c.app.ConfigureLogging(jsonOutput, verbose)
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addPathFlags registers the directory overrides shared by build and clean.
func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().String("distpath", domain.DefaultDistDir, "Directory the bundle is written to")
	cmd.Flags().String("workpath", domain.DefaultWorkDir, "Directory for intermediate build files")
	cmd.Flags().String("specpath", "", "Directory relative manifest paths resolve against (default: the manifest's directory)")
}

func pathOptions(cmd *cobra.Command) domain.BuildOptions {
	dist, _ := cmd.Flags().GetString("distpath")
	work, _ := cmd.Flags().GetString("workpath")
	spec, _ := cmd.Flags().GetString("specpath")
	return domain.BuildOptions{
		DistDir: dist,
		WorkDir: work,
		SpecDir: spec,
	}
}
