package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return formatter.Success(map[string]any{"version": Version})
		},
	}
}
