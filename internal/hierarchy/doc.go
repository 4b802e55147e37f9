// Package hierarchy assembles matched candidates into the component model.
//
// Containment: a component goes under the smallest-area candidate whose box,
// grown by Options.Tolerance, encloses it and whose area is at least its own.
// Candidates are attached in ascending area order (ties by ID), so the result
// does not depend on input order. A link that would close a cycle is dropped
// and recorded as a diagnostic carrying a *CycleError; the next enclosing
// candidate is tried instead.
//
// Relationships are derived between siblings only:
//
//   - adjacent:right / adjacent:left for boxes whose rows overlap and whose
//     columns are at most Options.Gap apart; adjacent:below / adjacent:above
//     likewise for stacked boxes. "A adjacent:right B" means B is to the
//     right of A. Both directions are recorded.
//   - labeled_by / label_for between a control and a borderless text
//     component adjacent to it on one of Options.LabelSides. Each control
//     and each label pairs at most once, nearest first. A control without a
//     label property takes the label's text.
package hierarchy
