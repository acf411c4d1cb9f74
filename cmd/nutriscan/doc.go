// Package main hosts the nutriscan command-line interface.
//
// The CLI resolves product photos to nutrition records: `identify` runs the
// full resolution pipeline (barcode, result cache, detection, then a manual
// label with fuzzy suggestions), prompting on a terminal when input is needed.
// Inspection commands expose the result cache, the local nutrition store and
// the learned image dataset, and `doctor` runs preflight checks against the
// configured backends.
//
// Commands share a lazily loaded configuration through commandContext;
// annotate a command with skipConfigLoad to run without one.
package main
