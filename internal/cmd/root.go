package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/cmd/forms"
	"github.com/turbolytics/formsync/internal/cmd/registry"
	"github.com/turbolytics/formsync/internal/cmd/serve"
)

// Version is set at build time.
var Version = "dev"

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:           "formsync",
		Short:         "Keeps form dropdowns in sync with spreadsheet registries",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(registry.NewCommand(internal.VariantEmployers))
	cmd.AddCommand(registry.NewCommand(internal.VariantEvents))
	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(forms.NewCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the formsync version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

// Execute runs the root command until it returns or the process is
// interrupted. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
