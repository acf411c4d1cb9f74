// Package imagestore keeps copies of photos the user labelled by hand so they
// can later feed a detection dataset. Files are named after their label with
// a short random suffix. Storage is a local directory or an S3 bucket, and the
// local dataset can be scanned for perceptual near-duplicates.
package imagestore
