package modules

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
	"github.com/cwbudde/algo-modsynth/dsp/smooth"
)

// LFO shapes.
const (
	LFOSine = iota
	LFOTriangle
	LFOSawtooth
	LFOSquare
	LFOSampleHold
)

// SyncBPM is the tempo synced LFO rates are derived from.
const SyncBPM = 120.0

var (
	lfoShapes     = []string{"Sine", "Triangle", "Sawtooth", "Square", "S&H"}
	lfoDivisions  = []string{"1/1", "1/2", "1/4", "1/8", "1/16", "1/32"}
	divisionBeats = []float64{4, 2, 1, 0.5, 0.25, 0.125}
)

// LFO is a low-frequency modulation source on outputs 0 and 1. The rate is
// free in Hz or synced to a note division at SyncBPM; the output is
// bipolar [-1, 1] or unipolar [0, 1], scaled by level.
type LFO struct {
	module.Base

	shape    *module.Param
	sync     *module.Param
	bipolar  *module.Param
	rateHz   *module.Param
	rateSync *module.Param
	retrig   *module.Param
	level    *module.Param
	glide    *module.Param

	phase   float64
	held    float64
	holdVal *smooth.Linear
	rng     *rand.Rand
	scope   *scope.Buffer
}

// NewLFO returns an LFO with default parameters.
func NewLFO() *LFO {
	l := &LFO{
		shape:    module.Choice("shape", "Shape", lfoShapes, LFOSine),
		sync:     module.Bool("mode", "Sync", true),
		bipolar:  module.Bool("bipolar", "Bipolar", true),
		rateHz:   module.Float("rateHz", "Rate (Hz)", 0.01, 20, 1),
		rateSync: module.Choice("rateSync", "Rate (Sync)", lfoDivisions, 2),
		retrig:   module.Bool("retrig", "Retrigger", false),
		level:    module.Float("level", "Level", 0, 1, 1),
		glide:    module.Float("glide", "Glide", 0, 1, 0),
		rng:      rand.New(rand.NewPCG(0x5eed, 0x1f0)),
		scope:    scope.New(scope.DefaultSize),
	}
	l.Base = module.NewBase(module.Ports{Name: TypeLFO, Inputs: 0, Outputs: 2, MIDIIn: true},
		l.shape, l.sync, l.bipolar, l.rateHz, l.rateSync, l.retrig, l.level, l.glide)
	return l
}

// Prepare implements module.Module.
func (l *LFO) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := l.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	l.phase = 0
	l.held = 0
	l.holdVal = smooth.NewLinear(sampleRate, holdGlide(0), 0)
	return nil
}

// Rate returns the current rate in Hz.
func (l *LFO) Rate() float64 {
	if l.sync.Bool() {
		beats := divisionBeats[min(max(l.rateSync.Index(), 0), len(divisionBeats)-1)]
		return 1 / ((60 / SyncBPM) * beats)
	}
	return l.rateHz.Value()
}

// Process implements module.Module.
func (l *LFO) Process(audio [][]float64, events *midi.Buffer) {
	out := channel(audio, 0)
	if l.holdVal == nil || out == nil {
		return
	}

	inc := l.Rate() / l.SampleRate()
	shape := l.shape.Index()
	bipolar := l.bipolar.Bool()
	retrig := l.retrig.Bool()
	level := l.level.Value()
	cursor := newCursor(events)

	for i := range out {
		for e, ok := cursor.due(i); ok; e, ok = cursor.due(i) {
			if retrig && e.IsNoteOn() {
				l.phase = 0
			}
		}

		v := l.wave(shape)

		l.phase += inc
		if l.phase >= 1 {
			l.phase -= math.Floor(l.phase)
			if shape == LFOSampleHold {
				l.sampleNext()
			}
		}

		if !bipolar {
			v = (v + 1) * 0.5
		}
		out[i] = v * level
	}

	if right := channel(audio, 1); right != nil {
		copy(right, out)
	}
	l.scope.PushBlock(out)
}

func (l *LFO) wave(shape int) float64 {
	p := l.phase
	switch shape {
	case LFOTriangle:
		return 2*math.Abs(2*(p-math.Floor(p+0.5))) - 1
	case LFOSawtooth:
		return 2 * (p - 0.5)
	case LFOSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case LFOSampleHold:
		return l.holdVal.Next()
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

func (l *LFO) sampleNext() {
	l.held = l.rng.Float64()*2 - 1
	g := l.glide.Value()
	if g <= 0 {
		l.holdVal.SetCurrentAndTarget(l.held)
		return
	}
	l.holdVal.Reset(l.SampleRate(), holdGlide(g))
	l.holdVal.SetTarget(l.held)
}

// holdGlide maps the glide parameter to a ramp time of at most 0.5 s.
func holdGlide(glide float64) float64 {
	return math.Max(0.001, glide*0.5)
}

// Scope implements module.Visualizer.
func (l *LFO) Scope() *scope.Buffer { return l.scope }
