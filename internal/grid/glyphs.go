package grid

import (
	"fmt"
	"sort"
)

// Arm is a bitmask of the directions a box-drawing stroke leaves its cell.
type Arm uint8

const (
	ArmUp Arm = 1 << iota
	ArmDown
	ArmLeft
	ArmRight
)

// Has reports whether all arms in want are present.
func (a Arm) Has(want Arm) bool { return a&want == want }

// Style names a family of border glyphs.
type Style string

const (
	StyleNone    Style = "none"
	StyleSingle  Style = "single"
	StyleDouble  Style = "double"
	StyleHeavy   Style = "heavy"
	StyleRounded Style = "rounded"
	StyleASCII   Style = "ascii"
)

// StylePrecedence breaks ties between styles with equal votes. Earlier wins.
// Rounded comes first because its edges are shared with single-line boxes and
// only its corners tell the two apart.
var StylePrecedence = []Style{StyleRounded, StyleHeavy, StyleDouble, StyleSingle, StyleASCII}

// MarkerKind classifies special marker glyphs.
type MarkerKind string

const (
	MarkerNone     MarkerKind = "none"
	MarkerCheckbox MarkerKind = "checkbox"
	MarkerRadio    MarkerKind = "radio"
	MarkerArrow    MarkerKind = "arrow"
)

type boxGlyph struct {
	arms  Arm
	style Style
}

const (
	lr   = ArmLeft | ArmRight
	ud   = ArmUp | ArmDown
	all4 = ArmUp | ArmDown | ArmLeft | ArmRight
)

// boxTable is the fixed arm geometry of every recognized box-drawing glyph.
var boxTable = map[rune]boxGlyph{
	'─': {lr, StyleSingle}, '│': {ud, StyleSingle},
	'┄': {lr, StyleSingle}, '┈': {lr, StyleSingle}, '╌': {lr, StyleSingle},
	'┆': {ud, StyleSingle}, '┊': {ud, StyleSingle}, '╎': {ud, StyleSingle},
	'┌': {ArmRight | ArmDown, StyleSingle}, '┐': {ArmLeft | ArmDown, StyleSingle},
	'└': {ArmRight | ArmUp, StyleSingle}, '┘': {ArmLeft | ArmUp, StyleSingle},
	'├': {ud | ArmRight, StyleSingle}, '┤': {ud | ArmLeft, StyleSingle},
	'┬': {lr | ArmDown, StyleSingle}, '┴': {lr | ArmUp, StyleSingle},
	'┼': {all4, StyleSingle},

	'╭': {ArmRight | ArmDown, StyleRounded}, '╮': {ArmLeft | ArmDown, StyleRounded},
	'╰': {ArmRight | ArmUp, StyleRounded}, '╯': {ArmLeft | ArmUp, StyleRounded},

	'═': {lr, StyleDouble}, '║': {ud, StyleDouble},
	'╔': {ArmRight | ArmDown, StyleDouble}, '╗': {ArmLeft | ArmDown, StyleDouble},
	'╚': {ArmRight | ArmUp, StyleDouble}, '╝': {ArmLeft | ArmUp, StyleDouble},
	'╠': {ud | ArmRight, StyleDouble}, '╣': {ud | ArmLeft, StyleDouble},
	'╦': {lr | ArmDown, StyleDouble}, '╩': {lr | ArmUp, StyleDouble},
	'╬': {all4, StyleDouble},

	'━': {lr, StyleHeavy}, '┃': {ud, StyleHeavy},
	'┏': {ArmRight | ArmDown, StyleHeavy}, '┓': {ArmLeft | ArmDown, StyleHeavy},
	'┗': {ArmRight | ArmUp, StyleHeavy}, '┛': {ArmLeft | ArmUp, StyleHeavy},
	'┣': {ud | ArmRight, StyleHeavy}, '┫': {ud | ArmLeft, StyleHeavy},
	'┳': {lr | ArmDown, StyleHeavy}, '┻': {lr | ArmUp, StyleHeavy},
	'╋': {all4, StyleHeavy},

	'-': {lr, StyleASCII}, '|': {ud, StyleASCII}, '+': {all4, StyleASCII},
}

// sharedEdges lists glyphs that also belong to a second style. Rounded boxes
// draw their edges with the single-line strokes.
var sharedEdges = map[rune][]Style{
	'─': {StyleRounded},
	'│': {StyleRounded},
}

var defaultBrackets = []string{"[]", "()", "<>", "{}"}

var defaultMarkers = map[MarkerKind]string{
	MarkerCheckbox: "☐☑☒",
	MarkerRadio:    "○●◉◯◎",
	MarkerArrow:    "▼▲►◄▶◀→←↑↓▾▸",
}

// tokenMarks lists the middle runes that turn a three-cell bracket token such
// as "[x]" or "(o)" into a marker.
var tokenMarks = map[rune]struct {
	mids string
	kind MarkerKind
}{
	'[': {" xX*✓✔-", MarkerCheckbox},
	'(': {" oO*•●xX", MarkerRadio},
}

// Glyphs is the glyph classification table. The zero value is unusable; build
// one with DefaultGlyphs or NewGlyphs. A Glyphs value is read-only once built.
type Glyphs struct {
	enabled map[Style]bool
	openers map[rune]rune
	closers map[rune]rune
	markers map[rune]MarkerKind
}

// GlyphOption customizes a glyph table.
type GlyphOption func(*Glyphs) error

// WithStyles restricts border recognition to the listed styles.
func WithStyles(styles ...Style) GlyphOption {
	return func(g *Glyphs) error {
		g.enabled = make(map[Style]bool, len(styles))
		for _, s := range styles {
			switch s {
			case StyleSingle, StyleDouble, StyleHeavy, StyleRounded, StyleASCII:
				g.enabled[s] = true
			default:
				return fmt.Errorf("unknown border style %q", s)
			}
		}
		return nil
	}
}

// WithBrackets adds bracket pairs. Each pair is a two-rune string such as "()".
func WithBrackets(pairs ...string) GlyphOption {
	return func(g *Glyphs) error {
		for _, p := range pairs {
			r := []rune(p)
			if len(r) != 2 {
				return fmt.Errorf("bracket pair %q must be exactly two runes", p)
			}
			g.openers[r[0]] = r[1]
			g.closers[r[1]] = r[0]
		}
		return nil
	}
}

// WithMarkers adds marker glyphs of the given kind.
func WithMarkers(kind MarkerKind, glyphs string) GlyphOption {
	return func(g *Glyphs) error {
		switch kind {
		case MarkerCheckbox, MarkerRadio, MarkerArrow:
		default:
			return fmt.Errorf("unknown marker kind %q", kind)
		}
		for _, r := range glyphs {
			g.markers[r] = kind
		}
		return nil
	}
}

// NewGlyphs builds a glyph table from the defaults plus the given options.
func NewGlyphs(opts ...GlyphOption) (*Glyphs, error) {
	g := &Glyphs{
		enabled: map[Style]bool{
			StyleSingle: true, StyleDouble: true, StyleHeavy: true,
			StyleRounded: true, StyleASCII: true,
		},
		openers: make(map[rune]rune),
		closers: make(map[rune]rune),
		markers: make(map[rune]MarkerKind),
	}
	for _, p := range defaultBrackets {
		r := []rune(p)
		g.openers[r[0]] = r[1]
		g.closers[r[1]] = r[0]
	}
	for kind, set := range defaultMarkers {
		for _, r := range set {
			g.markers[r] = kind
		}
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

var defaultGlyphs, _ = NewGlyphs()

// DefaultGlyphs returns the shared default glyph table.
func DefaultGlyphs() *Glyphs { return defaultGlyphs }

// Arms returns the stroke directions of a box-drawing glyph, or 0 when r is
// not a box glyph of an enabled style.
func (g *Glyphs) Arms(r rune) Arm {
	bg, ok := boxTable[r]
	if !ok {
		return 0
	}
	if g.enabled[bg.style] {
		return bg.arms
	}
	for _, s := range sharedEdges[r] {
		if g.enabled[s] {
			return bg.arms
		}
	}
	return 0
}

// IsBoxGlyph reports whether r is a box-drawing glyph of an enabled style.
func (g *Glyphs) IsBoxGlyph(r rune) bool { return g.Arms(r) != 0 }

// IsLineArt reports whether r is a Unicode box-drawing character. ASCII
// strokes are excluded since they double as punctuation.
func (g *Glyphs) IsLineArt(r rune) bool {
	return r >= 0x2500 && r <= 0x257F && g.IsBoxGlyph(r)
}

// Styles returns every enabled style r belongs to, in precedence order.
func (g *Glyphs) Styles(r rune) []Style {
	bg, ok := boxTable[r]
	if !ok {
		return nil
	}
	member := map[Style]bool{bg.style: true}
	for _, s := range sharedEdges[r] {
		member[s] = true
	}
	var out []Style
	for _, s := range StylePrecedence {
		if member[s] && g.enabled[s] {
			out = append(out, s)
		}
	}
	return out
}

// InStyle reports whether r belongs to style s.
func (g *Glyphs) InStyle(r rune, s Style) bool {
	for _, got := range g.Styles(r) {
		if got == s {
			return true
		}
	}
	return false
}

// IsBorderGlyph reports whether r delimits a component: a box-drawing glyph
// of an enabled style or a bracket.
func (g *Glyphs) IsBorderGlyph(r rune) bool {
	if g.IsBoxGlyph(r) {
		return true
	}
	_, isOpen := g.openers[r]
	_, isClose := g.closers[r]
	return isOpen || isClose
}

// IsOpener reports whether r opens a bracket pair.
func (g *Glyphs) IsOpener(r rune) bool {
	_, ok := g.openers[r]
	return ok
}

// IsCloser reports whether r closes a bracket pair.
func (g *Glyphs) IsCloser(r rune) bool {
	_, ok := g.closers[r]
	return ok
}

// Closer returns the closing glyph for an opener.
func (g *Glyphs) Closer(open rune) (rune, bool) {
	c, ok := g.openers[open]
	return c, ok
}

// MarkerKind classifies a single marker glyph.
func (g *Glyphs) MarkerKind(r rune) MarkerKind {
	if k, ok := g.markers[r]; ok {
		return k
	}
	return MarkerNone
}

// TokenMarker classifies a three-cell bracket token such as "[x]" or "( )".
func (g *Glyphs) TokenMarker(open, mid, shut rune) MarkerKind {
	want, ok := g.openers[open]
	if !ok || want != shut {
		return MarkerNone
	}
	tm, ok := tokenMarks[open]
	if !ok {
		return MarkerNone
	}
	for _, m := range tm.mids {
		if m == mid {
			return tm.kind
		}
	}
	if g.MarkerKind(mid) != MarkerNone {
		return tm.kind
	}
	return MarkerNone
}

// StyleGlyphs returns the glyphs of one style, sorted, for diagnostics and
// pattern listings.
func (g *Glyphs) StyleGlyphs(s Style) []rune {
	var out []rune
	for r := range boxTable {
		if g.InStyle(r, s) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
