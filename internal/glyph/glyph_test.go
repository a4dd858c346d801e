package glyph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_L(t *testing.T) {
	got, ok := Matrix('L')
	require.True(t, ok)
	assert.Equal(t, []Offset{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 4}, {2, 4}, {3, 4}, {4, 4},
	}, got)
}

func TestMatrix_Space(t *testing.T) {
	got, ok := Matrix(' ')
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestMatrix_Unknown(t *testing.T) {
	got, ok := Matrix('q')
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMatrix_StaysInsideCell(t *testing.T) {
	for _, r := range Runes() {
		dots, ok := Matrix(r)
		require.True(t, ok)
		for _, d := range dots {
			assert.True(t, d.X >= 0 && d.X < Size && d.Y >= 0 && d.Y < Size, "%q: %v", r, d)
		}
	}
}

func TestMatrix_ReturnsCopy(t *testing.T) {
	a, _ := Matrix('T')
	a[0] = Offset{9, 9}
	b, _ := Matrix('T')
	assert.Equal(t, Offset{0, 0}, b[0])
}

func TestSupportsText(t *testing.T) {
	assert.True(t, SupportsText("CYGNI TECH SUMMIT\n2020_"))
	assert.True(t, SupportsText("BY LEXA\r\nCTS"))
	assert.True(t, SupportsText(""))
	assert.False(t, SupportsText("cts"))
	assert.False(t, SupportsText("CTS 2023"))
	assert.False(t, SupportsText("A\rB"))
	assert.False(t, SupportsText("CTS\r"))
	assert.False(t, SupportsText("A\r\rB"))
}
