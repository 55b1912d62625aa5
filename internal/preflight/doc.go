// Package preflight provides readiness checks for the filesystem paths a
// cleaning run depends on.
//
// The CLI calls RunAll before starting a run so a missing or read-only store,
// scratch, or output directory is reported up front instead of after the input
// artifact has been downloaded. `cleanstage config validate` prints the same
// results.
package preflight
