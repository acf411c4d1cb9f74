// Package pipeline sequences the resolution strategies that turn a product
// photo into a nutrition record.
//
// Strategies run in priority order: barcode in the image, a manually typed
// barcode, the fingerprint result cache, the detection model, and finally a
// manual label with fuzzy suggestions drawn from earlier answers. The flow is
// an explicit state machine. Begin advances a Session until it either
// finishes or needs input; the caller then feeds SubmitBarcode, SubmitLabel
// or Confirm events and renders each returned Step. Collaborator failures
// (decoding, detection, remote lookups) become warnings and a next step; only
// storage failures are returned as errors.
package pipeline
