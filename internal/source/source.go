// Package source turns raw mockup text into grids.
//
// Text is cleaned before it reaches the grid: Unicode is composed to NFC,
// fullwidth and halfwidth variants are folded to their canonical width, tabs
// are expanded and, when enabled, ragged lines are padded with blanks.
package source

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// DefaultTabWidth is used when Options.TabWidth is not positive.
const DefaultTabWidth = 4

// Options control text cleanup.
type Options struct {
	TabWidth  int
	PadRagged bool

	// Glyphs is the table grids are built with. Nil means the defaults.
	Glyphs *grid.Glyphs

	Storage grid.Storage
}

// DefaultOptions returns padded input with four-column tabs.
func DefaultOptions() Options {
	return Options{TabWidth: DefaultTabWidth, PadRagged: true}
}

// Normalize cleans text and splits it into lines.
func Normalize(text string, opts Options) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = width.Fold.String(norm.NFC.String(text))
	lines := grid.SplitLines(text)

	tab := opts.TabWidth
	if tab <= 0 {
		tab = DefaultTabWidth
	}
	widest := 0
	for i, l := range lines {
		lines[i] = expandTabs(l, tab)
		widest = max(widest, utf8.RuneCountInString(lines[i]))
	}
	if opts.PadRagged {
		for i, l := range lines {
			if n := utf8.RuneCountInString(l); n < widest {
				lines[i] = l + strings.Repeat(" ", widest-n)
			}
		}
	}
	return lines
}

func expandTabs(line string, tab int) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var sb strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := tab - col%tab
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

// Parse normalizes text and builds a grid.
func Parse(text string, opts Options) (grid.Grid, error) {
	gopts := []grid.Option{grid.WithStorage(opts.Storage)}
	if opts.Glyphs != nil {
		gopts = append(gopts, grid.WithGlyphs(opts.Glyphs))
	}
	return grid.New(Normalize(text, opts), gopts...)
}

// Cache loads mockup files and keeps their grids keyed by path.
//
// Entries stay until Evict or Clear. Different spellings of one path are
// separate entries. Cache is safe for concurrent use.
type Cache struct {
	opts Options

	mu    sync.RWMutex
	grids map[string]grid.Grid
}

// NewCache creates an empty cache that parses with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts, grids: make(map[string]grid.Grid)}
}

// Load returns the grid for path, reading and parsing the file on a miss.
// Parse errors keep their type behind a path prefix.
func (c *Cache) Load(path string) (grid.Grid, error) {
	c.mu.RLock()
	if g, ok := c.grids[path]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mockup: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, &grid.FormatError{Reason: "input is not valid UTF-8"})
	}
	g, err := Parse(string(data), c.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.mu.Lock()
	c.grids[path] = g
	c.mu.Unlock()
	return g, nil
}

// Evict drops one path. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.grids, path)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.grids = make(map[string]grid.Grid)
	c.mu.Unlock()
}

// Len returns the number of cached grids.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.grids)
}
