// Package barcode finds a retail barcode in a product photo.
//
// A Resolver first tries the row band with the strongest horizontal-edge
// signal (where bars usually live), then the whole frame. Decoding itself is
// delegated to a Decoder; the default one drives the ZXing 1D readers. Only
// EAN-13, EAN-8, UPC-A and Code 128 symbols are accepted, and decode failures
// are logged and swallowed so callers simply see "no barcode".
package barcode
