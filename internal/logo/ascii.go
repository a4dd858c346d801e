package logo

import "strings"

// Frame renders the logo as text: '#' for a dot, '*' for a lit dot.
// Rows are separated by newlines; trailing spaces are trimmed.
func (l *Logo) Frame() string {
	stats := l.reg.Stats()
	if stats.Count == 0 {
		return ""
	}

	width := stats.MaxX - stats.MinX + 1
	height := stats.MaxY - stats.MinY + 1
	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}

	for _, px := range l.pixels() {
		ch := byte('#')
		if px.Lit {
			ch = '*'
		}
		grid[px.Y-stats.MinY][px.X-stats.MinX] = ch
	}

	rows := make([]string, height)
	for i, row := range grid {
		rows[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(rows, "\n")
}
