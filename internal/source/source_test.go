package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

func writeMockup(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mockup.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts Options
		want []string
	}{
		{"tabs", "a\tb\n\tc", Options{TabWidth: 4}, []string{"a   b", "    c"}},
		{"tab width default", "\tx", Options{}, []string{"    x"}},
		{"pad", "ab\nabcd\n", DefaultOptions(), []string{"ab  ", "abcd"}},
		{"no pad", "ab\nabcd", Options{TabWidth: 4}, []string{"ab", "abcd"}},
		{"nfc", "cafe\u0301", DefaultOptions(), []string{"caf\u00e9"}},
		{"fullwidth", "［ＯＫ］", DefaultOptions(), []string{"[OK]"}},
		{"halfwidth box", "\uffe8", DefaultOptions(), []string{"│"}},
		{"bom and crlf", "\ufeffab\r\ncd\r\n", DefaultOptions(), []string{"ab", "cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, tt.opts))
		})
	}
}

func TestParse(t *testing.T) {
	g, err := Parse("┌──┐\n│ok│\n└──┘\nx", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 4, g.Height())

	_, err = Parse("ab\nabc", Options{})
	var fe *grid.FormatError
	assert.ErrorAs(t, err, &fe)

	glyphs, err := grid.NewGlyphs(grid.WithStyles(grid.StyleASCII))
	require.NoError(t, err)
	g, err = Parse("+-+", Options{Glyphs: glyphs, Storage: grid.StorageRows})
	require.NoError(t, err)
	assert.Same(t, glyphs, g.Glyphs())
}

func TestCache_Load(t *testing.T) {
	path := writeMockup(t, "[OK]\n[Cancel]\n")
	c := NewCache(DefaultOptions())

	g, err := c.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, g.Width())
	assert.Equal(t, 1, c.Len())

	again, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, g, again)

	c.Evict(path)
	assert.Zero(t, c.Len())
	c.Evict("never-loaded")

	_, err = c.Load(path)
	require.NoError(t, err)
	c.Clear()
	assert.Zero(t, c.Len())
}

func TestCache_Errors(t *testing.T) {
	c := NewCache(DefaultOptions())

	_, err := c.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	var fe *grid.FormatError
	_, err = c.Load(writeMockup(t, "ok\xff"))
	require.ErrorAs(t, err, &fe)

	_, err = c.Load(writeMockup(t, ""))
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, c.Len())
}

func TestCache_Concurrent(t *testing.T) {
	path := writeMockup(t, "[Go] [Stop]")
	c := NewCache(DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := c.Load(path)
			assert.NoError(t, err)
			assert.Equal(t, 11, g.Width())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
