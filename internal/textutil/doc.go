// Package textutil provides label canonicalization and filename helpers.
//
// Labels typed by users, returned by classifiers and reported by the remote
// source all pass through CanonicalLabel before they are used as store or
// cache keys, so every component agrees on one spelling.
package textutil
