// Package sqlstore is the embedded SQLite storage backend. One database file
// holds both the result cache (fingerprint to label) and the local nutrition
// store (label to record), so the two mappings can be updated by concurrent
// CLI invocations without the JSON backend's whole-file rewrites.
package sqlstore
