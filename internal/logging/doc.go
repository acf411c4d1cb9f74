// Package logging assembles structured slog loggers used across nutriscan.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the image fingerprint, the current stage, and a correlation ID.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
