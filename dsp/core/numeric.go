package core

import "math"

const (
	defaultEpsilon = 1e-12

	// ReferencePitch is the frequency of MIDI note 69 (A4).
	ReferencePitch = 440.0
	referenceNote  = 69
)

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps, using a relative
// comparison for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return false
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny values to exact zero. Recursive filter states
// decaying towards silence otherwise end up in the subnormal range.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// NoteToHz converts a (possibly fractional) MIDI note number to Hz in
// twelve-tone equal temperament.
func NoteToHz(note float64) float64 {
	return ReferencePitch * math.Exp2((note-referenceNote)/12)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
