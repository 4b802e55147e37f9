package grid

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrOutOfBounds is returned by At and Line for coordinates outside the grid.
	ErrOutOfBounds = errors.New("grid: coordinates out of bounds")

	// ErrInvalidRegion is returned by Region for inverted or out-of-range corners.
	ErrInvalidRegion = errors.New("grid: invalid region")
)

// FormatError reports input that cannot form a grid. Line and Column are
// 1-based; zero means the whole input.
type FormatError struct {
	Line   int
	Column int
	Reason string
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("grid format: line %d, column %d: %s", e.Line, e.Column, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("grid format: line %d: %s", e.Line, e.Reason)
	default:
		return "grid format: " + e.Reason
	}
}

// Grid is a read-only two-dimensional rune buffer.
type Grid interface {
	Width() int
	Height() int

	// At returns the rune at (x, y) or ErrOutOfBounds.
	At(x, y int) (rune, error)

	// Line returns a copy of row y.
	Line(y int) ([]rune, error)

	// Region returns a view of the inclusive rectangle (x1, y1)-(x2, y2).
	// Coordinates of the view start at (0, 0).
	Region(x1, y1, x2, y2 int) (Grid, error)

	// Glyphs returns the glyph table the grid was built with.
	Glyphs() *Glyphs
}

// Storage selects the backing layout of a grid.
type Storage int

const (
	// StorageFlat keeps all cells in one row-major slice.
	StorageFlat Storage = iota
	// StorageRows keeps one slice per row.
	StorageRows
)

type options struct {
	storage Storage
	glyphs  *Glyphs
}

// Option configures New and Parse.
type Option func(*options)

// WithStorage picks the storage layout.
func WithStorage(s Storage) Option { return func(o *options) { o.storage = s } }

// WithGlyphs sets the glyph table. The default is DefaultGlyphs().
func WithGlyphs(g *Glyphs) Option { return func(o *options) { o.glyphs = g } }

// New builds a grid from equal-width lines. Width is measured in runes.
func New(lines []string, opts ...Option) (Grid, error) {
	o := options{storage: StorageFlat, glyphs: DefaultGlyphs()}
	for _, opt := range opts {
		opt(&o)
	}

	if len(lines) == 0 {
		return nil, &FormatError{Reason: "empty input: no rows"}
	}

	rows := make([][]rune, len(lines))
	width := -1
	for i, line := range lines {
		r := []rune(line)
		for j, c := range r {
			if c == '\t' || unicode.IsControl(c) {
				return nil, &FormatError{Line: i + 1, Column: j + 1,
					Reason: fmt.Sprintf("control character %U; expand tabs before building a grid", c)}
			}
		}
		if width < 0 {
			width = len(r)
		} else if len(r) != width {
			return nil, &FormatError{Line: i + 1,
				Reason: fmt.Sprintf("row width %d, expected %d", len(r), width)}
		}
		rows[i] = r
	}
	if width == 0 {
		return nil, &FormatError{Reason: "empty input: zero-width rows"}
	}

	if o.storage == StorageRows {
		return &rowGrid{rows: rows, width: width, glyphs: o.glyphs}, nil
	}
	cells := make([]rune, 0, width*len(rows))
	for _, r := range rows {
		cells = append(cells, r...)
	}
	return &flatGrid{cells: cells, width: width, height: len(rows), glyphs: o.glyphs}, nil
}

// Parse splits text into lines and builds a grid. A single trailing newline is
// ignored and carriage returns are dropped.
func Parse(text string, opts ...Option) (Grid, error) {
	return New(SplitLines(text), opts...)
}

// SplitLines splits text the way Parse does.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// String renders the grid back to text, one line per row.
func String(g Grid) string {
	var sb strings.Builder
	for y := 0; y < g.Height(); y++ {
		line, _ := g.Line(y)
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Bounds returns the rectangle covering the whole grid.
func Bounds(g Grid) Rect {
	return Rect{MaxX: g.Width() - 1, MaxY: g.Height() - 1}
}

// Snapshot copies every row. Stages that scan the whole grid use it to avoid
// per-cell error checks.
func Snapshot(g Grid) ([][]rune, error) {
	rows := make([][]rune, g.Height())
	for y := range rows {
		line, err := g.Line(y)
		if err != nil {
			return nil, err
		}
		rows[y] = line
	}
	return rows, nil
}

func outOfBounds(x, y, w, h int) error {
	return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, w, h)
}

func checkRegion(x1, y1, x2, y2, w, h int) error {
	if x1 > x2 || y1 > y2 {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) is inverted", ErrInvalidRegion, x1, y1, x2, y2)
	}
	if x1 < 0 || y1 < 0 || x2 >= w || y2 >= h {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) outside %dx%d", ErrInvalidRegion, x1, y1, x2, y2, w, h)
	}
	return nil
}

type flatGrid struct {
	cells         []rune
	width, height int
	glyphs        *Glyphs
}

func (g *flatGrid) Width() int      { return g.width }
func (g *flatGrid) Height() int     { return g.height }
func (g *flatGrid) Glyphs() *Glyphs { return g.glyphs }

func (g *flatGrid) At(x, y int) (rune, error) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, outOfBounds(x, y, g.width, g.height)
	}
	return g.cells[y*g.width+x], nil
}

func (g *flatGrid) Line(y int) ([]rune, error) {
	if y < 0 || y >= g.height {
		return nil, outOfBounds(0, y, g.width, g.height)
	}
	out := make([]rune, g.width)
	copy(out, g.cells[y*g.width:(y+1)*g.width])
	return out, nil
}

func (g *flatGrid) Region(x1, y1, x2, y2 int) (Grid, error) {
	if err := checkRegion(x1, y1, x2, y2, g.width, g.height); err != nil {
		return nil, err
	}
	return &view{parent: g, ox: x1, oy: y1, width: x2 - x1 + 1, height: y2 - y1 + 1}, nil
}

type rowGrid struct {
	rows   [][]rune
	width  int
	glyphs *Glyphs
}

func (g *rowGrid) Width() int      { return g.width }
func (g *rowGrid) Height() int     { return len(g.rows) }
func (g *rowGrid) Glyphs() *Glyphs { return g.glyphs }

func (g *rowGrid) At(x, y int) (rune, error) {
	if x < 0 || y < 0 || x >= g.width || y >= len(g.rows) {
		return 0, outOfBounds(x, y, g.width, len(g.rows))
	}
	return g.rows[y][x], nil
}

func (g *rowGrid) Line(y int) ([]rune, error) {
	if y < 0 || y >= len(g.rows) {
		return nil, outOfBounds(0, y, g.width, len(g.rows))
	}
	out := make([]rune, g.width)
	copy(out, g.rows[y])
	return out, nil
}

func (g *rowGrid) Region(x1, y1, x2, y2 int) (Grid, error) {
	if err := checkRegion(x1, y1, x2, y2, g.width, len(g.rows)); err != nil {
		return nil, err
	}
	return &view{parent: g, ox: x1, oy: y1, width: x2 - x1 + 1, height: y2 - y1 + 1}, nil
}

// view is a rectangular window onto another grid.
type view struct {
	parent        Grid
	ox, oy        int
	width, height int
}

func (v *view) Width() int      { return v.width }
func (v *view) Height() int     { return v.height }
func (v *view) Glyphs() *Glyphs { return v.parent.Glyphs() }

func (v *view) At(x, y int) (rune, error) {
	if x < 0 || y < 0 || x >= v.width || y >= v.height {
		return 0, outOfBounds(x, y, v.width, v.height)
	}
	return v.parent.At(v.ox+x, v.oy+y)
}

func (v *view) Line(y int) ([]rune, error) {
	if y < 0 || y >= v.height {
		return nil, outOfBounds(0, y, v.width, v.height)
	}
	full, err := v.parent.Line(v.oy + y)
	if err != nil {
		return nil, err
	}
	return full[v.ox : v.ox+v.width], nil
}

func (v *view) Region(x1, y1, x2, y2 int) (Grid, error) {
	if err := checkRegion(x1, y1, x2, y2, v.width, v.height); err != nil {
		return nil, err
	}
	return &view{parent: v.parent, ox: v.ox + x1, oy: v.oy + y1, width: x2 - x1 + 1, height: y2 - y1 + 1}, nil
}
