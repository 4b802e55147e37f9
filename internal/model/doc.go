// Package model holds the recognized component tree.
//
// Components live in an arena and refer to each other by integer ID: parent,
// children and relationship targets are IDs, never pointers. A Builder owns
// the arena while the tree is assembled and hands out a frozen
// ComponentModel when done. A frozen model is read-only and safe for
// concurrent use.
//
// # Properties
//
// Known component types carry a closed set of property keys, each optionally
// restricted to an enumeration (checkbox state, radio state). Writes to a
// known key are validated and rejected when invalid. Keys outside the schema,
// and every key of an unknown type, go to the component's Extensions map.
//
// # Diagnostics
//
// Non-fatal defects are recorded alongside the tree: unclassified
// components, hierarchy edges dropped to avoid a cycle, and rejected
// property writes.
package model
