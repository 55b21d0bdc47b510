// Package conv provides a safe integer conversion helper for narrowing a
// signature-set file's depth/offset fields to the wire-sized type the
// pattern model uses.
//
// It panics on overflow since this indicates a programming error (a
// signature-set file specifying an offset or depth outside uint16 range;
// once narrowed, such a value could no longer be detected by
// Pattern.Validate's bounds check).
package conv

import "math"

// IntToUint16 safely converts an int to uint16.
// Panics if n < 0 or n > math.MaxUint16.
//
//go:inline
func IntToUint16(n int) uint16 {
	if n < 0 || n > math.MaxUint16 {
		panic("integer overflow: int value out of uint16 range")
	}
	return uint16(n)
}
