// Package conv provides checked integer conversions for decoding
// untrusted matrix headers.
package conv
