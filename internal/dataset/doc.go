// Package dataset holds the in-memory tabular model the cleaning stage works
// on, together with its CSV codec and the two transformations the stage
// applies: an inclusive numeric range filter and a date normalization.
//
// Cells keep their original text unless a transformation reinterprets them.
// Missing values follow the pandas read_csv conventions so datasets produced
// by upstream Python stages round-trip without surprises.
package dataset
