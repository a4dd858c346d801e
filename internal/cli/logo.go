package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/cts/internal/logo"
)

// LogoOptions holds flags for the logo command.
type LogoOptions struct {
	*RootOptions
	Output     string
	PNG        bool
	ASCII      bool
	Zoom       int
	Ratio      float64
	Colors     []string
	Background string
}

// LogoResult is the JSON payload of a logo written to a file.
type LogoResult struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Dots   int    `json:"dots"`
}

// NewLogoCommand creates the logo command.
func NewLogoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logo [text]",
		Short: "Render the dot-matrix logo",
		Long: `Render text as a dot-matrix logo.

Without text, the logo text of the config is used. "\n" in the text starts a
new line. The SVG goes to stdout unless --out is given.

Example:
  cts logo "CTS\n2020_"
  cts logo --png --zoom 10 --out logo.png
  cts logo --ascii HELLO`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogo(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.PNG, "png", false, "render PNG instead of SVG")
	cmd.Flags().BoolVar(&opts.ASCII, "ascii", false, "render plain text")
	cmd.Flags().IntVar(&opts.Zoom, "zoom", 0, "pixels per dot (default from config)")
	cmd.Flags().Float64Var(&opts.Ratio, "ratio", 0, "width/height ratio to pad to")
	cmd.Flags().StringSliceVar(&opts.Colors, "colors", nil, "colour per line")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background colour")
	cmd.MarkFlagsMutuallyExclusive("png", "ascii")

	return cmd
}

// unescapeText turns the two-character sequence \n into a line break.
func unescapeText(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func runLogo(opts *LogoOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	lo := logoOptions(cfg.Logo)
	if len(args) == 1 {
		lo.Text = unescapeText(args[0])
	}
	if cmd.Flags().Changed("zoom") {
		lo.Zoom = opts.Zoom
	}
	if cmd.Flags().Changed("ratio") {
		lo.Ratio = opts.Ratio
	}
	if len(opts.Colors) > 0 {
		lo.Colors = opts.Colors
	}
	if opts.Background != "" {
		lo.Background = opts.Background
	}

	l, err := logo.New(lo)
	if err != nil {
		_ = formatter.Error(ErrCodeLogo, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid logo", err)
	}
	formatter.VerboseLog("Laid out %d dots, %dx%d px", l.Points().Len(), l.Size().Width, l.Size().Height)

	var buf bytes.Buffer
	format := "svg"
	switch {
	case opts.PNG:
		format = "png"
		err = l.WritePNG(&buf)
	case opts.ASCII:
		format = "ascii"
		buf.WriteString(l.Frame())
		buf.WriteByte('\n')
	default:
		err = l.WriteSVG(&buf)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeLogo, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to render logo", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write logo", err)
	}

	result := LogoResult{
		Path:   opts.Output,
		Format: format,
		Width:  l.Size().Width,
		Height: l.Size().Height,
		Dots:   l.Points().Stats().Count,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("Wrote %s logo (%dx%d) to %s", format, result.Width, result.Height, result.Path))
}
