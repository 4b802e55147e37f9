// Package render turns a ComponentModel back into pictures of itself.
//
// Text repaints the components onto a character canvas. Feeding that text
// back through recognition yields an equivalent model. Tree lists the forest
// one component per line. Preview draws a PNG with component outlines
// colored by type.
package render
