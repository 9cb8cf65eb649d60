// Package hash contains the hash functions used for value fingerprints.
//
// All functions are deterministic across runs, so hashes may be persisted and
// compared later, for example to verify that replaying a journal arrives at
// the same state.
package hash

import "math"

// DJBInit is the initial accumulator of the DJB hash.
const DJBInit uint32 = 5381

// DJBCombine folds h into the accumulator acc. The result depends on order.
func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

// DJB combines a sequence of hashes in order.
func DJB(hs ...uint32) uint32 {
	acc := DJBInit
	for _, h := range hs {
		acc = DJBCombine(acc, h)
	}
	return acc
}

// Bool hashes a boolean.
func Bool(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Int hashes an int. The result is the same on 32-bit and 64-bit platforms for
// values that fit in 32 bits.
func Int(i int) uint32 {
	return UInt64(uint64(int64(i)))
}

// UInt64 folds a 64-bit value into 32 bits.
func UInt64(u uint64) uint32 {
	return mul33(uint32(u>>32)) + uint32(u&0xffffffff)
}

// Float64 hashes a float64 by its bit pattern. All NaNs hash the same.
func Float64(f float64) uint32 {
	if math.IsNaN(f) {
		return 0x7ff80000
	}
	if f == 0 {
		// +0 and -0 compare equal.
		return 0
	}
	return UInt64(math.Float64bits(f))
}

// String hashes a string.
func String(s string) uint32 {
	h := DJBInit
	for i := 0; i < len(s); i++ {
		h = DJBCombine(h, uint32(s[i]))
	}
	return h
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
