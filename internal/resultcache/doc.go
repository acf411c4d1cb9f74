// Package resultcache persists the fingerprint to label mapping that lets a
// previously resolved photo skip barcode scanning and detection.
//
// Entries are never removed. Every Put is a full read-modify-write of the
// backing JSON object, performed under a file lock and committed by atomic
// rename; an identical Put leaves the file byte-for-byte unchanged.
package resultcache
