// SPDX-License-Identifier: MIT
//
// Package bitint provides power-of-2 helpers used for FFT window and
// buffer sizing. All operations are allocation-free and constant time.
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Powers of 2 map to
// themselves; the size-1 subtraction is what keeps exact powers from being
// doubled. Non-positive sizes map to 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of 2
// has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
