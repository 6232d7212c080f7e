// Package mathx holds small generic numeric helpers shared by drivers and
// tools.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func Min[T constraints.Ordered](a, b T) T {
	if b < a {
		return b
	}
	return a
}

// SetBit returns v with bit n set or cleared.
func SetBit[T constraints.Unsigned](v T, n uint8, on bool) T {
	if on {
		return v | 1<<n
	}
	return v &^ (1 << n)
}
