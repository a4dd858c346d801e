package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cts/internal/animation"
	"github.com/roach88/cts/internal/logo"
)

// AnimateOptions holds flags for the animate command.
type AnimateOptions struct {
	*RootOptions
	Steps    int
	Interval time.Duration
	Clear    bool
}

// NewAnimateCommand creates the animate command.
func NewAnimateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnimateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "animate [text]",
		Short: "Play the running-point animation in the terminal",
		Long: `Play the logo animation as text frames: '#' is a dot, '*' the lit one.

Runs until --steps frames were shown, or until interrupted when --steps is 0.

Example:
  cts animate "CTS" --steps 20
  cts animate --clear --interval 100ms`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnimate(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "number of frames to show (0 = until interrupted)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "time between frames (default from config)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "clear the terminal before every frame")

	return cmd
}

func runAnimate(opts *AnimateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	lo := logoOptions(cfg.Logo)
	if len(args) == 1 {
		lo.Text = unescapeText(args[0])
	}
	if lo.Animation == "" {
		lo.Animation = animation.ModeRunningPoint
	}
	interval := cfg.Interval()
	if cmd.Flags().Changed("interval") {
		interval = opts.Interval
	}
	if opts.Steps < 0 {
		return NewExitError(ExitCommandError, "--steps must not be negative")
	}
	if interval <= 0 {
		return NewExitError(ExitCommandError, "--interval must be positive")
	}

	l, err := logo.New(lo)
	if err != nil {
		_ = formatter.Error(ErrCodeLogo, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid logo", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := cmd.OutOrStdout()
	frames := 0
	stepper, err := l.Animate(func() {
		// Called with the stepper locked, one frame at a time. A tick can
		// still land between cancel and Stop.
		if opts.Steps > 0 && frames >= opts.Steps {
			return
		}
		frames++
		writeFrame(out, l.Frame(), frames, opts.Clear)
		if opts.Steps > 0 && frames >= opts.Steps {
			cancel()
		}
	}, animation.WithInterval(interval))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid animation", err)
	}
	formatter.VerboseLog("Animating %d dots every %s", l.Points().Len(), interval)

	err = stepper.Run(ctx)
	switch {
	case errors.Is(err, animation.ErrNothingToAnimate):
		_ = formatter.Error(ErrCodeLogo, err.Error(), nil)
		return WrapExitError(ExitFailure, "nothing to animate", err)
	case err != nil && !errors.Is(err, context.Canceled):
		return WrapExitError(ExitFailure, "animation error", err)
	}
	return nil
}

func writeFrame(w io.Writer, frame string, n int, clear bool) {
	if clear {
		fmt.Fprint(w, "\x1b[H\x1b[2J")
	} else if n > 1 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, frame)
}
