// Package failures defines the error taxonomy shared by the cleaning stage,
// the artifact store, and the CLI.
//
// Every failure that can abort a run is tagged with one of the exported
// sentinel markers through Wrap so callers can classify it with errors.Is and
// the CLI can pick a stable exit code. Markers never imply a retry: a run
// either publishes one complete artifact or none.
package failures
