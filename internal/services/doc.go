// Package services defines shared utilities consumed by the resolution
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp image fingerprints, pipeline stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (remote vs storage vs validation) without string matching.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across components.
package services
