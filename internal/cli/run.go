package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/drugsfda/internal/config"
	"github.com/roach88/drugsfda/internal/fetch"
	"github.com/roach88/drugsfda/internal/pipeline"
	"github.com/roach88/drugsfda/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Input    string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download, transform, and load the archive",
		Long: `Run the full pipeline: fetch the published archive (or read a local
copy with --input), build the bronze, silver, and gold layers, and load
every resource into the SQLite database.

Example:
  drugsfda run --db ./drugsfda.db
  drugsfda run --input ./drugsfda.zip --db /tmp/test.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&opts.Input, "input", "", "path to a local archive instead of downloading")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *RunOptions) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}

	configureLogging(opts.RootOptions, cfg)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	content, err := sourceBytes(ctx, cfg, opts.Input)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to obtain archive", err)
	}
	slog.Info("archive obtained", "bytes", len(content))

	started := time.Now()
	resources, err := pipeline.Run(content, started)
	if err != nil {
		return WrapExitError(ExitFailure, "pipeline failed", err)
	}

	slog.Info("opening database", "path", cfg.DatabasePath)
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	rows, err := st.LoadAll(ctx, resources)
	finished := time.Now()
	status := "ok"
	if err != nil {
		status = "failed"
	}
	if recErr := st.RecordRun(ctx, started, finished, len(resources), rows, status); recErr != nil {
		slog.Error("failed to record run", "error", recErr)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load resources", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(map[string]any{
		"resources":   len(resources),
		"rows_loaded": rows,
		"database":    cfg.DatabasePath,
		"duration":    finished.Sub(started).Round(time.Millisecond).String(),
	})
}

// sourceBytes reads the archive from disk when --input was given, otherwise
// downloads it.
func sourceBytes(ctx context.Context, cfg config.Config, input string) ([]byte, error) {
	if input != "" {
		slog.Info("reading local archive", "path", input)
		return os.ReadFile(input)
	}
	slog.Info("downloading archive", "url", cfg.BaseURL)
	client := fetch.New(cfg.HTTPTimeout(), cfg.Retries)
	return client.Download(ctx, cfg.BaseURL)
}

func configureLogging(opts *RootOptions, cfg config.Config) {
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// signalContext derives a context cancelled on SIGINT/SIGTERM. Uses the
// command's context when available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
