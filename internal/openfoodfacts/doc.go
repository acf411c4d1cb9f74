// Package openfoodfacts is a thin HTTP client for the OpenFoodFacts public
// API: full-text product search and product lookup by barcode.
//
// The client returns decoded payloads and plain errors. Turning those into
// nutrition records (best-match selection, error records) belongs to the
// nutrition package.
package openfoodfacts
