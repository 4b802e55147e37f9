// Package pattern parses and evaluates the declarative pattern grammar that
// turns feature vectors into typed component matches.
//
// # Grammar
//
// A pattern source holds one or more tracks. Statements are line oriented;
// "#" starts a comment that runs to the end of the line.
//
//	track controls
//	pattern button
//	  tag kind = box
//	  tag border = single | rounded
//	  tag lines = 1
//	  tag width = 3..24
//	  pluck label = /^\s*(.+?)\s*$/
//	  trap kind == box
//	  trap has label
//	end
//	execute
//
// A pattern may name the component type it produces with "as <type>";
// otherwise the pattern name is the type. Pattern IDs are "<track>.<name>".
//
// # Clauses
//
// tag binds an attribute to a set of accepted values separated by "|", or to
// a numeric range "a..b" (either bound may be omitted). Values are quoted
// glyph literals, bare words, or numbers. Glyph-role attributes (top_left,
// horizontal, ...) also accept a border style name, matching any glyph of
// that style.
//
// pluck extracts a property from the candidate's text with a regular
// expression. The first capture group is the value, or the whole match when
// the expression has no groups. "=> \"literal\"" stores a fixed value on a
// hit instead. An optional source selects what is searched: text (trimmed,
// the default), content (verbatim), title, or "line N" (1-based, verbatim).
//
// trap is a predicate that must hold for the match to be accepted. Operands
// are attribute or property names on the left and literals on the right;
// operators are == != < <= > >= ~ !~. "trap has p" and "trap lacks p" test
// whether a pluck produced the property.
//
// # Scoring
//
// Exact tags measure specificity (the fraction that matched), range tags
// measure agreement, and plucks measure extraction (the fraction of plucked
// properties that were found). Confidence is
//
//	specificity * (0.6 + 0.25*agreement + 0.15*extraction)
//
// rounded to four decimals. A candidate takes its highest-confidence match;
// ties go to the most recently registered pattern, then the smaller ID.
//
// # Errors
//
// Malformed sources fail with *DefinitionError carrying the source name, line
// and column. Nothing from a failing source is registered.
//
// # Concurrency
//
// A Registry may be read from many goroutines and appended to under its own
// lock. Registered patterns are immutable. The Interpreter fans candidates
// out over a bounded errgroup and merges results by candidate index.
package pattern
