// Package preflight provides readiness checks for the directories, storage
// backend and external services nutriscan depends on.
//
// The CLI "nutriscan doctor" command runs RunAll and prints one row per
// check. Each check is gated by configuration, so disabled features report as
// passed with a "disabled" detail rather than failing.
package preflight
