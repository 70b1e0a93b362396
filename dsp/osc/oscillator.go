package osc

import (
	"fmt"
	"math"
)

// Waveform enumerates the oscillator shapes.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Saw
	Triangle
)

// WaveformNames lists the display names in Waveform order.
var WaveformNames = []string{"Sine", "Square", "Saw", "Triangle"}

// String implements fmt.Stringer.
func (w Waveform) String() string {
	if w < 0 || int(w) >= len(WaveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return WaveformNames[w]
}

// Oscillator renders one waveform from a Phasor. Changing the frequency
// never touches the phase, so retuning is click free.
type Oscillator struct {
	phasor     Phasor
	sampleRate float64
	frequency  float64
	waveform   Waveform
}

// New returns an oscillator at the given sample rate.
func New(sampleRate float64) (*Oscillator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("osc: sample rate must be positive and finite: %v", sampleRate)
	}
	o := &Oscillator{sampleRate: sampleRate}
	o.SetFrequency(440)
	return o, nil
}

// SetSampleRate updates the sample rate and keeps the frequency.
func (o *Oscillator) SetSampleRate(sampleRate float64) {
	if sampleRate <= 0 {
		return
	}
	o.sampleRate = sampleRate
	o.phasor.SetFrequency(o.frequency, sampleRate)
}

// SetFrequency retunes the oscillator. Negative values are folded to zero.
func (o *Oscillator) SetFrequency(hz float64) {
	if hz < 0 || math.IsNaN(hz) {
		hz = 0
	}
	o.frequency = hz
	o.phasor.SetFrequency(hz, o.sampleRate)
}

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// SetWaveform selects the output shape.
func (o *Oscillator) SetWaveform(w Waveform) { o.waveform = w }

// Waveform returns the current shape.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phasor.phase }

// Reset zeroes the phase.
func (o *Oscillator) Reset() { o.phasor.Reset() }

// Next renders one sample and advances the phase.
func (o *Oscillator) Next() float64 {
	t := o.phasor.phase
	dt := o.phasor.inc

	var out float64
	switch o.waveform {
	case Square:
		out = -1
		if t < 0.5 {
			out = 1
		}
		out += PolyBLEP(t, dt)
		out -= PolyBLEP(wrap(t+0.5), dt)
	case Saw:
		out = 2*t - 1 - PolyBLEP(t, dt)
	case Triangle:
		out = 1 - 4*math.Abs(t-0.5)
	default:
		out = math.Sin(2 * math.Pi * t)
	}

	o.phasor.Advance()
	return out
}

// Process fills dst with consecutive samples.
func (o *Oscillator) Process(dst []float64) {
	for i := range dst {
		dst[i] = o.Next()
	}
}
