package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boxLines = []string{
	"┌───┐",
	"│OK │",
	"└───┘",
}

func TestNew_Storages(t *testing.T) {
	for _, storage := range []Storage{StorageFlat, StorageRows} {
		g, err := New(boxLines, WithStorage(storage))
		require.NoError(t, err)

		assert.Equal(t, 5, g.Width())
		assert.Equal(t, 3, g.Height())

		r, err := g.At(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 'O', r)

		line, err := g.Line(2)
		require.NoError(t, err)
		assert.Equal(t, "└───┘", string(line))
	}
}

func TestNew_FormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantLine int
	}{
		{"no rows", nil, 0},
		{"ragged", []string{"abc", "ab"}, 2},
		{"tab", []string{"a\tb"}, 1},
		{"zero width", []string{"", ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.lines)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantLine, fe.Line)
		})
	}
}

func TestParse_EmptyGridFails(t *testing.T) {
	_, err := Parse("")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "empty input")
}

func TestParse_TrailingNewlineAndCR(t *testing.T) {
	g, err := Parse("ab\r\ncd\r\n")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Height())
	assert.Equal(t, "ab\ncd\n", String(g))
}

func TestAt_OutOfBounds(t *testing.T) {
	g, err := New(boxLines)
	require.NoError(t, err)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 3}} {
		_, err := g.At(p[0], p[1])
		assert.True(t, errors.Is(err, ErrOutOfBounds), "At(%d,%d)", p[0], p[1])
	}
}

func TestRegion(t *testing.T) {
	for _, storage := range []Storage{StorageFlat, StorageRows} {
		g, err := New(boxLines, WithStorage(storage))
		require.NoError(t, err)

		sub, err := g.Region(1, 1, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, sub.Width())
		assert.Equal(t, 1, sub.Height())

		line, err := sub.Line(0)
		require.NoError(t, err)
		assert.Equal(t, "OK ", string(line))

		_, err = sub.At(3, 0)
		assert.ErrorIs(t, err, ErrOutOfBounds)

		nested, err := sub.Region(1, 0, 1, 0)
		require.NoError(t, err)
		r, err := nested.At(0, 0)
		require.NoError(t, err)
		assert.Equal(t, 'K', r)
	}
}

func TestRegion_Invalid(t *testing.T) {
	g, err := New(boxLines)
	require.NoError(t, err)

	tests := [][4]int{
		{3, 0, 1, 2},  // inverted x
		{0, 2, 4, 0},  // inverted y
		{0, 0, 5, 2},  // past right edge
		{-1, 0, 2, 2}, // negative
	}
	for _, r := range tests {
		_, err := g.Region(r[0], r[1], r[2], r[3])
		assert.ErrorIs(t, err, ErrInvalidRegion, "%v", r)
	}
}

func TestLine_ReturnsCopy(t *testing.T) {
	g, err := New(boxLines)
	require.NoError(t, err)

	line, err := g.Line(1)
	require.NoError(t, err)
	line[1] = 'X'

	r, err := g.At(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 'O', r)
}
