// Package logging assembles structured slog loggers and formatting helpers used
// across mediascribe.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so batch code automatically tags
// log lines with the run ID, the file being processed and the pipeline step.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
