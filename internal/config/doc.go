// Package config loads, normalizes, and validates nutriscan configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as NUTRISCAN_DETECTOR_URL
// and AWS_REGION. The Config type centralizes every knob the CLI needs so the
// data directory, storage backend, remote source and detector credentials are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
