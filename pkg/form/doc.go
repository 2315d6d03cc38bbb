// Package form holds the mutable state behind the "Track New Asset" form:
// scalar field values bound through setters, the ordered reporter rows, and
// the static field layout renderers draw from.
//
// Reporter rows keep one invariant: at most one row has no resolved key and,
// when present, it is the last row (the sentinel used to add a new reporter).
// Rows carry stable IDs so renderers never key UI elements by position.
package form
