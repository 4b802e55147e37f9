// Package grid provides the immutable character buffer that every recognition
// stage reads from.
//
// A mockup is a rectangle of runes. Rows all have the same width; the grid
// refuses ragged input instead of padding it, because padding is a loader
// decision (see package source).
//
// # Coordinate System
//
// All coordinates are 0-based cell positions:
//   - X: column (0 = leftmost)
//   - Y: row (0 = topmost)
//   - Rectangles are inclusive on both corners: a single cell is Rect{X, Y, X, Y}
//
// # Storage
//
// The Grid interface hides how cells are stored. New builds a flat row-major
// buffer by default; WithStorage(StorageRows) keeps one slice per row. Region
// returns a read-only view that shares the parent's storage. All three
// satisfy the same contract and callers never see the concrete types.
//
// # Errors
//
//   - FormatError: empty input, ragged rows, tabs or control characters.
//   - ErrOutOfBounds: At/Line outside the grid. Never clamped, never wrapped.
//   - ErrInvalidRegion: Region with inverted or out-of-range corners.
//
// Out-of-bounds and invalid-region failures indicate a caller bug rather than
// bad input; the pipeline treats them as fatal.
//
// # Glyphs
//
// Glyphs is the glyph table consulted by segmentation and feature extraction:
// box-drawing characters per border style with the directions their strokes
// leave the cell ("arms"), bracket pairs, and marker glyphs such as checkboxes.
//
// # Thread Safety
//
// A Grid never changes after construction. Any number of goroutines may read
// it concurrently.
package grid
