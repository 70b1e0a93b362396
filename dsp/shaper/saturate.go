package shaper

import "math"

// Saturate applies the rational soft clipper x*drive / (1 + |x*drive|).
// The output is bounded to (-1, 1) and odd-symmetric.
func Saturate(x, drive float64) float64 {
	y := x * drive
	return y / (1 + math.Abs(y))
}
