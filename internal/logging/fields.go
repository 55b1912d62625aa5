package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for tracker run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for stage names.
	FieldStage = "stage"
	// FieldState is the standardized structured logging key for stage state machine states.
	FieldState = "state"
	// FieldEventType classifies a log line for downstream filtering.
	FieldEventType = "event_type"
	// FieldArtifact is the standardized structured logging key for artifact references.
	FieldArtifact = "artifact"
	// FieldErrorKind carries the failure classification on error lines.
	FieldErrorKind = "error_kind"
	// FieldErrorHint suggests the next step on warnings and errors.
	FieldErrorHint = "error_hint"
)
