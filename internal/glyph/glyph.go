// Package glyph holds the 5x5 dot-matrix font used by the logo.
//
// Cells of a glyph are numbered row by row:
//
//	00 01 02 03 04
//	05 06 07 08 09
//	10 11 12 13 14
//	15 16 17 18 19
//	20 21 22 23 24
//
// A glyph lists its cells in drawing order. A stroke that runs back over
// itself repeats cells; the points registry keeps those as later
// generations, so the running-point animation still visits each dot once.
package glyph

import "strings"

// Size is the width and height of a glyph cell.
const Size = 5

// Offset is the position of a dot inside the 5x5 cell.
type Offset struct {
	X, Y int
}

var charmap = map[rune][]int{
	'A': {20, 15, 10, 5, 1, 2, 3, 9, 14, 13, 12, 11, 10, 5, 1, 2, 3, 9, 14, 19, 24},
	'B': {0, 5, 10, 15, 20, 15, 10, 5, 0, 1, 2, 3, 9, 13, 12, 11, 10, 11, 12, 13, 19, 23, 22, 21, 20},
	'C': {4, 3, 2, 1, 0, 5, 10, 15, 20, 21, 22, 23, 24},
	'E': {4, 3, 2, 1, 0, 5, 10, 11, 12, 11, 10, 15, 20, 21, 22, 23, 24},
	'G': {4, 3, 2, 1, 0, 5, 10, 15, 20, 21, 22, 23, 24, 19, 14, 13, 12},
	'H': {0, 5, 10, 15, 20, 15, 10, 11, 12, 13, 14, 9, 4, 9, 14, 19, 24},
	'I': {0, 1, 2, 3, 4, 3, 2, 7, 12, 17, 22, 21, 20, 21, 22, 23, 24},
	'L': {0, 5, 10, 15, 20, 21, 22, 23, 24},
	'M': {0, 5, 10, 15, 20, 15, 10, 5, 0, 1, 2, 7, 12, 17, 22, 17, 12, 7, 2, 3, 4, 9, 14, 19, 24},
	'N': {20, 15, 10, 5, 0, 1, 2, 7, 12, 17, 22, 23, 24, 19, 14, 9, 4},
	'S': {4, 3, 2, 1, 0, 5, 10, 11, 12, 13, 14, 19, 24, 23, 22, 21, 20},
	'T': {0, 1, 2, 3, 4, 3, 2, 7, 12, 17, 22},
	'U': {0, 5, 10, 15, 20, 21, 22, 23, 24, 19, 14, 9, 4},
	'X': {0, 6, 12, 18, 24, 18, 12, 16, 20, 16, 12, 8, 4},
	'Y': {0, 5, 10, 11, 12, 17, 22, 17, 12, 13, 14, 9, 4},

	'0': {4, 3, 2, 1, 0, 5, 10, 15, 20, 21, 22, 17, 11, 10, 15, 20, 21, 22, 23, 24, 19, 14, 9, 4},
	'1': {0, 1, 2, 7, 12, 17, 22, 21, 20, 21, 22, 23, 24},
	'2': {0, 1, 2, 3, 4, 9, 14, 13, 12, 11, 16, 21, 22, 23, 24},
	'8': {4, 3, 2, 1, 0, 5, 10, 11, 12, 13, 14, 19, 24, 23, 22, 21, 20, 15, 10, 11, 12, 13, 14, 9, 4},
	'9': {4, 3, 2, 1, 0, 5, 10, 11, 12, 13, 14, 9, 4, 9, 14, 19, 24, 23, 22, 21, 20},

	'_': {20, 21, 22, 23, 24},
	' ': {},
}

// Supports reports whether r has a glyph. Space is supported and has no dots.
func Supports(r rune) bool {
	_, ok := charmap[r]
	return ok
}

// SupportsText reports whether every character of text has a glyph.
// Line breaks ("\n" and "\r\n") are allowed; a lone '\r' is not.
func SupportsText(text string) bool {
	for i, r := range text {
		if r == '\n' || (r == '\r' && strings.HasPrefix(text[i+1:], "\n")) {
			continue
		}
		if !Supports(r) {
			return false
		}
	}
	return true
}

// Matrix returns the dots of r in drawing order.
func Matrix(r rune) ([]Offset, bool) {
	cells, ok := charmap[r]
	if !ok {
		return nil, false
	}
	out := make([]Offset, len(cells))
	for i, c := range cells {
		out[i] = Offset{X: c % Size, Y: c / Size}
	}
	return out, true
}

// Runes returns every supported character.
func Runes() []rune {
	out := make([]rune, 0, len(charmap))
	for r := range charmap {
		out = append(out, r)
	}
	return out
}
