// Package tracker records a single stage execution against the artifact store.
//
// A Run is started once per process, logs the parameters it was invoked with,
// resolves the artifacts it consumes into a private scratch directory, publishes
// the artifacts it produces, and is finished on every exit path. Finish removes
// the scratch directory and moves the run record to its terminal status.
package tracker
