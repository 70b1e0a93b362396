package shaper

import "math"

// section is a transposed direct form II biquad.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
	d0, d1     float64
}

// lowpass designs an RBJ low-pass section.
func lowpass(freq, q, sampleRate float64) section {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return section{
		b0: (1 - cw) / 2 / a0,
		b1: (1 - cw) / a0,
		b2: (1 - cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

func (s *section) process(x float64) float64 {
	y := s.b0*x + s.d0
	s.d0 = s.b1*x - s.a1*y + s.d1
	s.d1 = s.b2*x - s.a2*y
	return y
}

// dcGroupDelay is the group delay at 0 Hz, in samples.
func (s *section) dcGroupDelay() float64 {
	num := (s.b1 + 2*s.b2) / (s.b0 + s.b1 + s.b2)
	den := (s.a1 + 2*s.a2) / (1 + s.a1 + s.a2)
	return num - den
}

func (s *section) reset() {
	s.d0, s.d1 = 0, 0
}
