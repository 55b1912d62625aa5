// Package artifacts persists versioned, immutable dataset snapshots and the
// runs that consume and produce them.
//
// The Store keeps its registry in SQLite and the file contents in a
// content-addressed blob directory next to it. Artifacts are addressed as
// name:version where version is vN, latest, or omitted. Publishing a file whose
// digest matches the latest version of the same name returns that version
// instead of creating a new one, so rerunning a deterministic stage does not
// grow the history.
//
// The registry is the local stand-in for an external tracking service: callers
// only rely on Resolve, Create, AttachFile, Publish, and the run record
// helpers. Schema changes bump schemaVersion in schema.go; users clear the
// store directory to adopt the new schema.
package artifacts
