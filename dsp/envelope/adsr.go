// Package envelope provides the ADSR contour generator.
package envelope

import (
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/core"
)

// Stage is the envelope state.
type Stage int

const (
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// MinTime is the floor applied to every segment time. A zero-length
// attack or release would produce a step and an audible click.
const MinTime = 0.001

// Overshoot ratios of the exponential segments. Attack aims slightly
// above 1 so it is close to linear; decay and release aim just below the
// target so they reach it in finite time.
const (
	attackRatio  = 0.3
	decayRatio   = 0.0001
	releaseRatio = 0.0001
)

// ADSR is an exponential attack-decay-sustain-release envelope with output
// in [0, 1].
type ADSR struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64

	attackCoef, attackBase   float64
	decayCoef, decayBase     float64
	releaseCoef, releaseBase float64

	stage Stage
	value float64
}

// New returns an idle envelope with A=10ms, D=100ms, S=0.7, R=300ms.
func New(sampleRate float64) *ADSR {
	e := &ADSR{sampleRate: math.Max(1, sampleRate)}
	e.SetADSR(0.01, 0.1, 0.7, 0.3)
	return e
}

// SetSampleRate updates the sample rate and recomputes coefficients.
func (e *ADSR) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	e.sampleRate = sampleRate
	e.updateCoefficients()
}

// SetAttack sets the attack time in seconds.
func (e *ADSR) SetAttack(seconds float64) {
	e.attack = floorTime(seconds)
	e.updateCoefficients()
}

// SetDecay sets the decay time in seconds.
func (e *ADSR) SetDecay(seconds float64) {
	e.decay = floorTime(seconds)
	e.updateCoefficients()
}

// SetSustain sets the sustain level in [0, 1].
func (e *ADSR) SetSustain(level float64) {
	e.sustain = core.Clamp(level, 0, 1)
	e.updateCoefficients()
}

// SetRelease sets the release time in seconds.
func (e *ADSR) SetRelease(seconds float64) {
	e.release = floorTime(seconds)
	e.updateCoefficients()
}

// SetADSR sets all four parameters at once.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	e.attack = floorTime(attack)
	e.decay = floorTime(decay)
	e.sustain = core.Clamp(sustain, 0, 1)
	e.release = floorTime(release)
	e.updateCoefficients()
}

// Times returns the effective attack, decay and release times after the floor.
func (e *ADSR) Times() (attack, decay, release float64) {
	return e.attack, e.decay, e.release
}

func floorTime(seconds float64) float64 {
	if math.IsNaN(seconds) {
		return MinTime
	}
	return math.Max(MinTime, seconds)
}

func (e *ADSR) updateCoefficients() {
	e.attackCoef = segmentCoef(e.attack*e.sampleRate, attackRatio)
	e.attackBase = (1 + attackRatio) * (1 - e.attackCoef)

	e.decayCoef = segmentCoef(e.decay*e.sampleRate, decayRatio)
	e.decayBase = (e.sustain - decayRatio) * (1 - e.decayCoef)

	e.releaseCoef = segmentCoef(e.release*e.sampleRate, releaseRatio)
	e.releaseBase = -releaseRatio * (1 - e.releaseCoef)
}

// segmentCoef is the one-pole coefficient that covers the full segment
// span in the given number of samples.
func segmentCoef(samples, ratio float64) float64 {
	if samples <= 0 {
		return 0
	}
	return math.Exp(-math.Log((1+ratio)/ratio) / samples)
}

// NoteOn starts the attack from the current level.
func (e *ADSR) NoteOn() {
	e.stage = Attack
}

// NoteOff moves any active stage to release.
func (e *ADSR) NoteOff() {
	if e.stage != Idle {
		e.stage = Release
	}
}

// Reset returns to idle at zero.
func (e *ADSR) Reset() {
	e.stage = Idle
	e.value = 0
}

// Stage returns the current stage.
func (e *ADSR) Stage() Stage { return e.stage }

// Value returns the last output value.
func (e *ADSR) Value() float64 { return e.value }

// Active reports whether the envelope is outside Idle.
func (e *ADSR) Active() bool { return e.stage != Idle }

// Next advances one sample.
func (e *ADSR) Next() float64 {
	switch e.stage {
	case Attack:
		e.value = e.attackBase + e.value*e.attackCoef
		if e.value >= 1 {
			e.value = 1
			e.stage = Decay
		}
	case Decay:
		e.value = e.decayBase + e.value*e.decayCoef
		if e.value <= e.sustain {
			e.value = e.sustain
			e.stage = Sustain
		}
	case Sustain:
		e.value = e.sustain
	case Release:
		e.value = e.releaseBase + e.value*e.releaseCoef
		if e.value <= 0 {
			e.value = 0
			e.stage = Idle
		}
	default:
		e.value = 0
	}
	return e.value
}

// Process writes consecutive envelope values into dst.
func (e *ADSR) Process(dst []float64) {
	for i := range dst {
		dst[i] = e.Next()
	}
}
