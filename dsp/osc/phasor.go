package osc

// Phasor is a phase accumulator in [0, 1).
type Phasor struct {
	phase float64
	inc   float64
}

// SetFrequency sets the per-sample increment to hz/sampleRate.
func (p *Phasor) SetFrequency(hz, sampleRate float64) {
	if sampleRate <= 0 {
		p.inc = 0
		return
	}
	p.inc = hz / sampleRate
}

// Phase returns the current phase.
func (p *Phasor) Phase() float64 { return p.phase }

// Increment returns the per-sample phase increment.
func (p *Phasor) Increment() float64 { return p.inc }

// SetPhase sets the phase, wrapped into [0, 1).
func (p *Phasor) SetPhase(phase float64) {
	p.phase = wrap(phase)
}

// Advance moves the phase forward one sample and reports whether it wrapped.
func (p *Phasor) Advance() bool {
	p.phase += p.inc
	if p.phase >= 1 || p.phase < 0 {
		p.phase = wrap(p.phase)
		return true
	}
	return false
}

// Reset sets the phase to zero.
func (p *Phasor) Reset() { p.phase = 0 }

func wrap(x float64) float64 {
	x -= float64(int64(x))
	if x < 0 {
		x++
	}
	if x >= 1 {
		x = 0
	}
	return x
}
