// Package smooth ramps parameter values towards their targets so that
// control changes do not produce audible steps.
package smooth

import "math"

// Linear ramps to each new target in a fixed time, like a slew limiter
// whose rate depends on the distance to travel.
type Linear struct {
	current   float64
	target    float64
	step      float64
	remaining int
	rampLen   int
}

// NewLinear returns a smoother settled at value.
func NewLinear(sampleRate, rampSeconds, value float64) *Linear {
	s := &Linear{}
	s.Reset(sampleRate, rampSeconds)
	s.SetCurrentAndTarget(value)
	return s
}

// Reset sets the ramp length and snaps to the current target.
func (s *Linear) Reset(sampleRate, rampSeconds float64) {
	s.rampLen = int(math.Floor(rampSeconds * sampleRate))
	s.current = s.target
	s.remaining = 0
}

// SetCurrentAndTarget jumps to value without ramping.
func (s *Linear) SetCurrentAndTarget(value float64) {
	s.current = value
	s.target = value
	s.remaining = 0
}

// SetTarget starts a ramp from the current value. Setting the target it is
// already heading to does not restart the ramp.
func (s *Linear) SetTarget(value float64) {
	if value == s.target {
		return
	}
	s.target = value
	if s.rampLen <= 0 {
		s.current = value
		s.remaining = 0
		return
	}
	s.remaining = s.rampLen
	s.step = (s.target - s.current) / float64(s.rampLen)
}

// Next advances one sample and returns the new value.
func (s *Linear) Next() float64 {
	if s.remaining <= 0 {
		return s.target
	}
	s.remaining--
	if s.remaining == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Skip advances n samples at once.
func (s *Linear) Skip(n int) float64 {
	if n >= s.remaining {
		s.current = s.target
		s.remaining = 0
		return s.current
	}
	s.remaining -= n
	s.current += s.step * float64(n)
	return s.current
}

// Current returns the value most recently produced.
func (s *Linear) Current() float64 {
	if s.remaining <= 0 {
		return s.target
	}
	return s.current
}

// Target returns the value being ramped to.
func (s *Linear) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *Linear) IsSmoothing() bool { return s.remaining > 0 }
