package logo

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"github.com/mazznoer/csscolorparser"
)

// WritePNG rasterizes the logo. Colours accept any CSS colour syntax.
func (l *Logo) WritePNG(w io.Writer) error {
	if l.Empty() {
		return fmt.Errorf("render png: %w", ErrEmpty)
	}

	bg, err := csscolorparser.Parse(l.opts.Background)
	if err != nil {
		return fmt.Errorf("render png: background: %w", err)
	}

	zoom := float64(l.opts.Zoom)
	dc := gg.NewContext(l.size.Width, l.size.Height)
	dc.SetColor(bg)
	dc.Clear()

	for _, px := range l.pixels() {
		c, err := csscolorparser.Parse(px.Color)
		if err != nil {
			return fmt.Errorf("render png: dot colour: %w", err)
		}
		dc.SetColor(c)
		dc.DrawRectangle(
			float64(l.size.LeftPadding)+float64(px.X+1)*zoom,
			float64(l.size.TopPadding)+float64(px.Y+1)*zoom,
			zoom, zoom,
		)
		dc.Fill()
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}
