package logo

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"
)

// WriteSVG renders the logo as an SVG document.
func (l *Logo) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if l.Empty() {
		fmt.Fprintln(bw, `<div class="empty-svg"></div>`)
		return bw.Flush()
	}

	zoom := l.opts.Zoom
	stroke := strconv.FormatFloat(float64(zoom)/10, 'f', -1, 64)

	fmt.Fprintf(bw, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\" style=\"background-color: %s\">\n",
		l.size.Width, l.size.Height, html.EscapeString(l.opts.Background))
	for _, px := range l.pixels() {
		fill := html.EscapeString(px.Color)
		fmt.Fprintf(bw, "  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" style=\"fill: %s; stroke-width: %s; stroke: %s\"/>\n",
			l.size.LeftPadding+(px.X+1)*zoom,
			l.size.TopPadding+(px.Y+1)*zoom,
			zoom, zoom, fill, stroke, fill)
	}
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}
