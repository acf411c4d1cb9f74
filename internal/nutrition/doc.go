// Package nutrition owns the Nutrition Record model and the Source that
// resolves product labels and barcodes into records.
//
// Lookups are local-first: a label already present in the local store is
// answered without touching the network. Remote results are persisted only
// when they carry nutrition data, so error records never reach the store.
// Remote failures are converted into error records at this boundary and are
// never returned as Go errors; storage failures are.
package nutrition
