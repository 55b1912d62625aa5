// Package logging assembles structured slog loggers and formatting helpers used
// across cleanstage.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with the run identifier and stage name. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every line a run
// emits has the same shape whether it lands on a terminal or in a log file.
package logging
