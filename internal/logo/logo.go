// Package logo lays out text as a dot-matrix picture and renders it.
//
// Every character is drawn into a 5x5 cell with one empty column and row as
// spacing, so a character occupies a 6x6 block. Lines are centred on the
// longest line. All dots go into a points.Registry in drawing order; the
// registry's statistics size the picture.
package logo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/roach88/cts/internal/animation"
	"github.com/roach88/cts/internal/glyph"
	"github.com/roach88/cts/internal/points"
)

// Cell is the distance between two character origins.
const Cell = glyph.Size + 1

// MaxRatio bounds Options.Ratio; the padded side grows linearly with it.
const MaxRatio = 16.0

var (
	// ErrUnsupportedText is returned when the text contains characters
	// without a glyph.
	ErrUnsupportedText = errors.New("text contains unsupported characters")

	// ErrNoAnimation is returned by Animate when no animation is configured.
	ErrNoAnimation = errors.New("logo has no animation")

	// ErrEmpty is returned when a raster image is requested for an empty text.
	ErrEmpty = errors.New("logo is empty")

	// ErrInvalidRatio is returned for a ratio outside [0, MaxRatio].
	ErrInvalidRatio = errors.New("invalid ratio")
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// Options describes a logo.
type Options struct {
	Text       string
	Background string
	// Colors holds one colour per line. Missing lines reuse the last colour.
	Colors []string
	Zoom   int
	// Ratio is the wanted width/height ratio of the picture; 0 keeps the
	// natural size.
	Ratio     float64
	Animation string
}

// Dot is the payload stored with every registry entry.
type Dot struct {
	CharIndex int
	Color     string
}

// Size is the size of the rendered picture in pixels.
type Size struct {
	Width       int
	Height      int
	LeftPadding int
	TopPadding  int
}

// Logo is a laid out text.
type Logo struct {
	opts       Options
	lines      []string
	textWidth  int
	textHeight int
	reg        *points.Registry
	size       Size
}

// New lays out opts.Text.
func New(opts Options) (*Logo, error) {
	if !glyph.SupportsText(opts.Text) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedText, opts.Text)
	}
	if math.IsNaN(opts.Ratio) || opts.Ratio < 0 || opts.Ratio > MaxRatio {
		return nil, fmt.Errorf("%w: %v not in [0, %v]", ErrInvalidRatio, opts.Ratio, MaxRatio)
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	if opts.Background == "" {
		opts.Background = "white"
	}
	if len(opts.Colors) == 0 {
		opts.Colors = []string{"black"}
	}
	if opts.Animation != "" {
		if _, err := animation.ParseSetup(opts.Animation); err != nil {
			return nil, err
		}
	}

	l := &Logo{
		opts: opts,
		reg:  points.New(),
	}
	if opts.Text != "" {
		l.lines = lineBreak.Split(opts.Text, -1)
	}
	l.textHeight = len(l.lines)
	for _, line := range l.lines {
		l.textWidth = max(l.textWidth, utf8.RuneCountInString(line))
	}

	l.layout()
	l.size = l.measure()
	return l, nil
}

// layout appends the dots of every character to the registry.
func (l *Logo) layout() {
	charIndex := 0
	for lineIndex, line := range l.lines {
		lineStart := float64(l.textWidth-utf8.RuneCountInString(line)) / 2
		posY := Cell * lineIndex
		color := l.lineColor(lineIndex)

		charPos := 0
		for _, r := range line {
			posX := int(math.Floor(Cell * (lineStart + float64(charPos))))
			l.printCharacter(r, posX, posY, Dot{CharIndex: charIndex, Color: color})
			charIndex++
			charPos++
		}
	}
}

func (l *Logo) printCharacter(r rune, posX, posY int, dot Dot) {
	offsets, ok := glyph.Matrix(r)
	if !ok {
		return
	}
	for _, o := range offsets {
		l.reg.Append(posX+o.X, posY+o.Y, dot)
	}
}

func (l *Logo) lineColor(line int) string {
	if line < len(l.opts.Colors) {
		return l.opts.Colors[line]
	}
	return l.opts.Colors[len(l.opts.Colors)-1]
}

// measure derives the picture size from the registry's bounding box and the
// wanted ratio.
func (l *Logo) measure() Size {
	stats := l.reg.Stats()
	zoom := l.opts.Zoom
	size := Size{
		Width:  zoom * (stats.MaxX + 3),
		Height: zoom * (stats.MaxY + 3),
	}
	if l.textWidth == 0 || l.textHeight == 0 || l.opts.Ratio <= 0 {
		return size
	}

	ratioWidth := float64(size.Height) * l.opts.Ratio
	switch {
	case float64(size.Width) < ratioWidth:
		size.LeftPadding = int(math.Floor((ratioWidth - float64(size.Width)) / 2))
		size.Width = int(math.Floor(ratioWidth))
	case float64(size.Width) > ratioWidth:
		ratioHeight := float64(size.Width) / l.opts.Ratio
		size.TopPadding = int(math.Floor((ratioHeight - float64(size.Height)) / 2))
		size.Height = int(math.Floor(ratioHeight))
	}
	return size
}

// Empty reports whether there is no text to draw.
func (l *Logo) Empty() bool {
	return l.textWidth == 0 || l.textHeight == 0
}

// Size returns the picture size.
func (l *Logo) Size() Size {
	return l.size
}

// Points exposes the registry holding the dots.
func (l *Logo) Points() *points.Registry {
	return l.reg
}

// Options returns the options the logo was built with, defaults applied.
func (l *Logo) Options() Options {
	return l.opts
}

// Animate creates the configured animation. render is called after every
// step.
func (l *Logo) Animate(render func(), opts ...animation.Option) (*animation.Stepper, error) {
	if l.opts.Animation == "" {
		return nil, ErrNoAnimation
	}
	return animation.New(l.opts.Animation, l.reg, render, opts...)
}

// pixel is one dot as it appears on screen.
type pixel struct {
	X, Y  int
	Color string
	Lit   bool
}

// pixels returns the visible dots in drawing order. Later generations are
// skipped; a dot carrying a foreign mark is hidden.
func (l *Logo) pixels() []pixel {
	var out []pixel
	l.reg.Each(func(e points.Entry) bool {
		if e.Generation != 1 {
			return true
		}
		dot, _ := e.Payload.(Dot)
		px := pixel{X: e.X, Y: e.Y, Color: dot.Color}
		if tag, ok := l.reg.Mark(e.X, e.Y); ok {
			h, isHighlight := tag.(animation.Highlight)
			if !isHighlight || h.Color == "" {
				return true
			}
			px.Color = h.Color
			px.Lit = true
		}
		out = append(out, px)
		return true
	})
	return out
}
