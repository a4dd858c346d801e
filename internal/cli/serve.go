package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/cts/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	Adapter  string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the registration server",
		Long: `Start the HTTP server with the registration page, the attendee API
and the logo endpoints.

Flags override the values of the config file.

Example:
  cts serve
  cts serve --addr :8080 --adapter sqlite --db ./cts.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "address to listen on (default from config: localhost:3011)")
	cmd.Flags().StringVar(&opts.Adapter, "adapter", "", "database adapter (memory|sqlite)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = opts.Addr
	}
	if cmd.Flags().Changed("adapter") {
		cfg.Database.Adapter = opts.Adapter
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open attendee store", err)
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	srv, err := server.New(server.Options{
		Store:    store,
		Logo:     logoOptions(cfg.Logo),
		Interval: cfg.Interval(),
		Logger:   slog.Default(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create server", err)
	}

	slog.Info("server starting", "addr", cfg.Server.Addr, "adapter", cfg.Database.Adapter)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.ShutdownTimeout()); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
