// Package segment partitions a grid into raw component candidates.
//
// Segmentation runs in two passes over an immutable grid.
//
// # Closed Borders
//
// The first pass looks for rectangles drawn with box-drawing glyphs. Every
// glyph whose strokes leave right and down is a possible top-left corner; the
// top edge is walked to each reachable top-right corner, and the rectangle is
// closed at the nearest row where both a bottom-left and a bottom-right corner
// line up with an unbroken bottom edge. When all four corners are plain
// corners (not junctions) the farthest closing row is also recorded, which
// recovers outer frames split by horizontal dividers.
//
// Junction glyphs (├ ┬ ┼ ...) count as corners when their strokes allow it, so
// boxes sharing a border with a neighbour or an enclosing frame are still
// found. The top edge may carry a title ("┌─ Settings ─┐").
//
// Border cells are claimed by the smallest rectangle first. Each foreground
// cell ends up owned by exactly one candidate.
//
// # Flood Fill
//
// The second pass flood-fills the remaining foreground cells breadth-first,
// seeding in row-major order and visiting neighbours up, down, left, right.
// Claimed border cells stop the fill, so text inside a box never merges with
// text outside it. Free-standing line art (separators, partial borders) does
// not merge with ordinary characters.
//
// Words on one row are joined across gaps of up to WordGap blanks, except
// where the next cell opens a bracket ("[Yes] [No]" stays two tokens) or the
// previous cell closes a bracketed token other than a marker such as "[x]"
// ("[x] Enable logging" stays one).
//
// # Determinism
//
// Candidates are emitted boxes first in detection order, then text regions in
// seed order. The same grid always yields the same candidates with the same
// IDs.
package segment
