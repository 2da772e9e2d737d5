// math/core.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Radians converts an angle expressed in degrees to radians.
func Radians(d float32) float32 {
	return d / 180 * gomath.Pi
}

// Since we mostly use float32, it's handy to be able to call these
// directly rather than with all of the casts that are required when using
// the math package.

func Sin(a float32) float32 {
	return float32(gomath.Sin(float64(a)))
}

func Cos(a float32) float32 {
	return float32(gomath.Cos(float64(a)))
}

func Sqrt(a float32) float32 {
	return float32(gomath.Sqrt(float64(a)))
}

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// CeilInt rounds v up to the nearest integer; canvas pixel dimensions
// are computed with it.
func CeilInt[V constraints.Float](v V) int {
	return int(gomath.Ceil(float64(v)))
}

// IsPowerOfTwoMultiple reports whether v is base times a power of two
// (including base itself).
func IsPowerOfTwoMultiple[V constraints.Integer](v, base V) bool {
	if base <= 0 || v < base || v%base != 0 {
		return false
	}
	r := v / base
	return r&(r-1) == 0
}
