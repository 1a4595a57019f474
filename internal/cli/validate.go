package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/drugsfda/internal/config"
)

// NewValidateCommand creates the validate command, which loads the
// configuration and reports whether it passes schema validation without
// touching the network or the database.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the configuration (defaults, YAML file, environment) and check it
against the embedded schema. Exits non-zero when the config is invalid.

Example:
  drugsfda validate --config ./drugsfda.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			cfg, err := config.Load(rootOpts.Config)
			if err != nil {
				_ = formatter.Error("INVALID_CONFIG", err.Error())
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}

			return formatter.Success(map[string]any{
				"base_url":      cfg.BaseURL,
				"database_path": cfg.DatabasePath,
				"retries":       cfg.Retries,
				"log_level":     cfg.LogLevel,
			})
		},
	}
	return cmd
}
