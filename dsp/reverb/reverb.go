// Package reverb implements a stereo Schroeder/Freeverb-style reverb:
// eight damped feedback combs in parallel followed by four series allpasses
// per channel, with the right channel detuned by a fixed spread.
package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/core"
)

const (
	numCombs     = 8
	numAllpasses = 4

	inputGain = 0.015
	scaleWet  = 3.0
	scaleDry  = 2.0

	scaleDamp  = 0.4
	scaleRoom  = 0.28
	offsetRoom = 0.7

	allpassFeedback = 0.5

	// Tunings in samples at the reference rate; the right channel adds spread.
	referenceRate = 44100.0
	stereoSpread  = 23
)

var (
	combTunings    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTunings = [numAllpasses]int{556, 441, 341, 225}
)

// Reverb is a stereo reverb. All buffers are allocated by New.
type Reverb struct {
	roomSize float64
	damping  float64
	wet      float64
	dry      float64
	width    float64

	wet1, wet2 float64

	combs   [2][numCombs]comb
	allpass [2][numAllpasses]allpass
}

type comb struct {
	buffer      []float64
	index       int
	feedback    float64
	filterStore float64
	damp1       float64
	damp2       float64
}

func (c *comb) process(input float64) float64 {
	output := c.buffer[c.index]
	c.filterStore = core.FlushDenormals(output*c.damp2 + c.filterStore*c.damp1)
	c.buffer[c.index] = input + c.filterStore*c.feedback
	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}
	return output
}

type allpass struct {
	buffer []float64
	index  int
}

func (a *allpass) process(input float64) float64 {
	bufOut := a.buffer[a.index]
	a.buffer[a.index] = input + bufOut*allpassFeedback
	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}
	return bufOut - input
}

// New builds a reverb for the given sample rate with room 0.5, damping
// 0.5, wet 0.33, dry 0.4 and full width.
func New(sampleRate float64) (*Reverb, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: sample rate must be positive and finite: %v", sampleRate)
	}

	scale := sampleRate / referenceRate
	size := func(tuning, spread int) int {
		return max(1, int(math.Round(float64(tuning+spread)*scale)))
	}

	r := &Reverb{}
	for ch := range 2 {
		spread := ch * stereoSpread
		for i, tuning := range combTunings {
			r.combs[ch][i].buffer = make([]float64, size(tuning, spread))
		}
		for i, tuning := range allpassTunings {
			r.allpass[ch][i].buffer = make([]float64, size(tuning, spread))
		}
	}

	r.roomSize, r.damping, r.wet, r.dry, r.width = 0.5, 0.5, 0.33, 0.4, 1
	r.update()
	return r, nil
}

// SetParameters sets all controls, each clamped to [0, 1].
func (r *Reverb) SetParameters(roomSize, damping, wet, dry, width float64) {
	r.roomSize = core.Clamp(roomSize, 0, 1)
	r.damping = core.Clamp(damping, 0, 1)
	r.wet = core.Clamp(wet, 0, 1)
	r.dry = core.Clamp(dry, 0, 1)
	r.width = core.Clamp(width, 0, 1)
	r.update()
}

func (r *Reverb) update() {
	wet := r.wet * scaleWet
	r.wet1 = wet * (r.width/2 + 0.5)
	r.wet2 = wet * (1 - r.width) / 2

	feedback := r.roomSize*scaleRoom + offsetRoom
	damp := r.damping * scaleDamp
	for ch := range r.combs {
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			c.feedback = feedback
			c.damp1 = damp
			c.damp2 = 1 - damp
		}
	}
}

// ProcessStereo renders left and right in place.
func (r *Reverb) ProcessStereo(left, right []float64) {
	n := min(len(left), len(right))
	dry := r.dry * scaleDry
	for i := range n {
		inL, inR := left[i], right[i]
		x := (inL + inR) * inputGain

		var outL, outR float64
		for j := range numCombs {
			outL += r.combs[0][j].process(x)
			outR += r.combs[1][j].process(x)
		}
		for j := range numAllpasses {
			outL = r.allpass[0][j].process(outL)
			outR = r.allpass[1][j].process(outR)
		}

		left[i] = outL*r.wet1 + outR*r.wet2 + inL*dry
		right[i] = outR*r.wet1 + outL*r.wet2 + inR*dry
	}
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	for ch := range r.combs {
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			clear(c.buffer)
			c.index = 0
			c.filterStore = 0
		}
		for i := range r.allpass[ch] {
			clear(r.allpass[ch][i].buffer)
			r.allpass[ch][i].index = 0
		}
	}
}
