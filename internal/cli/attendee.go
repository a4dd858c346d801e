package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cts/internal/attendee"
)

// AttendeeOptions holds flags shared by the attendee subcommands.
type AttendeeOptions struct {
	*RootOptions
	Adapter  string
	Database string
	Mode     string
}

// AttendeeList is the JSON payload of attendee list.
type AttendeeList struct {
	Count int                 `json:"count"`
	Items []attendee.Attendee `json:"items"`
}

// NewAttendeeCommand creates the attendee command group.
func NewAttendeeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AttendeeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "attendee",
		Short: "Inspect and edit the attendee store",
		Long: `Inspect and edit the configured attendee store directly.

Only persistent adapters (sqlite) keep changes between runs.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Adapter, "adapter", "", "database adapter (memory|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List all attendees",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, s attendee.Store, f *OutputFormatter) error {
				return runAttendeeList(ctx, opts, s, f)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "get <firstname> <lastname>",
		Short:         "Look an attendee up by name",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, s attendee.Store, f *OutputFormatter) error {
				return runAttendeeGet(ctx, opts, s, f, args[0], args[1])
			})
		},
	})

	put := &cobra.Command{
		Use:           "put <firstname> <lastname> <yes|no|maybe>",
		Short:         "Register an attendee or change the answer",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, cmd, func(ctx context.Context, s attendee.Store, f *OutputFormatter) error {
				return runAttendeePut(ctx, opts, s, f, attendee.Attendee{
					Firstname: args[0],
					Lastname:  args[1],
					Attending: args[2],
				})
			})
		},
	}
	put.Flags().StringVar(&opts.Mode, "mode", string(attendee.ConflictOverwrite), "on a known name: error|overwrite|skip")
	cmd.AddCommand(put)

	return cmd
}

// withStore loads the config, opens the store and runs fn.
func withStore(opts *AttendeeOptions, cmd *cobra.Command, fn func(context.Context, attendee.Store, *OutputFormatter) error) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	if opts.Adapter != "" {
		cfg.Database.Adapter = opts.Adapter
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open attendee store", err)
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	return fn(ctx, store, formatter)
}

func formatAttendee(a attendee.Attendee) string {
	return fmt.Sprintf("%d\t%s\t%s\t%s", a.ID, a.Firstname, a.Lastname, a.Attending)
}

func runAttendeeList(ctx context.Context, opts *AttendeeOptions, s attendee.Store, f *OutputFormatter) error {
	items, err := s.List(ctx)
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to list attendees", err)
	}
	if opts.Format == "json" {
		return f.Success(AttendeeList{Count: len(items), Items: items})
	}

	lines := make([]string, 0, len(items))
	for _, a := range items {
		lines = append(lines, formatAttendee(a))
	}
	return f.Success(strings.Join(lines, "\n"))
}

func runAttendeeGet(ctx context.Context, opts *AttendeeOptions, s attendee.Store, f *OutputFormatter, firstname, lastname string) error {
	a, err := s.Get(ctx, firstname, lastname)
	if err != nil {
		code := ErrCodeStore
		if attendee.IsValidationError(err) {
			code = ErrCodeInvalidData
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to look up attendee", err)
	}
	if a == nil {
		msg := "There is no record with the given content."
		_ = f.Error(ErrCodeNotFound, msg, map[string]string{"firstname": firstname, "lastname": lastname})
		return NewExitError(ExitFailure, msg)
	}
	if opts.Format == "json" {
		return f.Success(a)
	}
	return f.Success(formatAttendee(*a))
}

func runAttendeePut(ctx context.Context, opts *AttendeeOptions, s attendee.Store, f *OutputFormatter, a attendee.Attendee) error {
	switch a.Attending {
	case attendee.Yes, attendee.No, attendee.Maybe:
	default:
		msg := fmt.Sprintf("attending must be one of %s, %s, %s", attendee.Yes, attendee.No, attendee.Maybe)
		_ = f.Error(ErrCodeInvalidData, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	saved, err := s.Save(ctx, a, attendee.ConflictMode(opts.Mode))
	if err != nil {
		code := ErrCodeStore
		switch {
		case attendee.IsValidationError(err),
			errors.Is(err, attendee.ErrInvalidConflictMode),
			errors.Is(err, attendee.ErrAlreadyRegistered):
			code = ErrCodeInvalidData
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to save attendee", err)
	}
	f.VerboseLog("Saved attendee %d", saved.ID)
	if opts.Format == "json" {
		return f.Success(saved)
	}
	return f.Success(formatAttendee(*saved))
}
