// Package cleaning implements the basic cleaning stage of the listings pipeline.
//
// The stage resolves a raw listings artifact, keeps the rows whose price lies
// within an inclusive range, reinterprets the last review column as dates,
// writes the result as CSV, and publishes that file as a new artifact version
// linked to the current run. Params carries the six command-line inputs and is
// validated before a Stage is constructed; Settings carries the column names
// and date rules loaded from configuration.
package cleaning
