package modules

import (
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/filter/ladder"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/smooth"
)

// FilterOctaveRange is the cutoff sweep, in octaves, of a full-scale CV
// with modAmount at 1.
const FilterOctaveRange = 4.0

const (
	cutoffSmoothing = 0.02

	// The ladder runs at twice the session rate to keep the tanh stages
	// from aliasing at high drive.
	filterOversampling = 2
)

// Filter is a driven 4-pole ladder low-pass. Input 0 is audio; input 1 is
// an exponential cutoff CV applied per sample:
//
//	cutoff = base * 2^(cv * modAmount * FilterOctaveRange)
//
// clamped to [20 Hz, 20 kHz]. The MIDI input is accepted so sequencers can
// be wired to it but events do not change the filter.
type Filter struct {
	module.Base

	cutoff    *module.Param
	resonance *module.Param
	drive     *module.Param
	modAmount *module.Param

	ladder *ladder.Filter
	base   *smooth.Linear
}

// NewFilter returns a filter with default parameters.
func NewFilter() *Filter {
	f := &Filter{
		cutoff:    module.Float("cutoff", "Cutoff", ladder.MinCutoffHz, ladder.MaxCutoffHz, 80).WithSmoothing(cutoffSmoothing),
		resonance: module.Float("resonance", "Resonance", 0, 1, 0.5),
		drive:     module.Float("drive", "Drive", 1, 10, 2),
		modAmount: module.Float("modAmount", "FM Amount", 0, 1, 1),
	}
	f.Base = module.NewBase(module.Ports{Name: TypeFilter, Inputs: 2, Outputs: 1, MIDIIn: true},
		f.cutoff, f.resonance, f.drive, f.modAmount)
	return f
}

// Prepare implements module.Module.
func (f *Filter) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := f.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	lf, err := ladder.New(sampleRate, ladder.WithOversampling(filterOversampling))
	if err != nil {
		return err
	}
	f.ladder = lf
	f.base = smooth.NewLinear(sampleRate, f.cutoff.Smoothing, f.cutoff.Value())
	return nil
}

// Process implements module.Module.
func (f *Filter) Process(audio [][]float64, _ *midi.Buffer) {
	in := channel(audio, 0)
	cv := channel(audio, 1)
	if f.ladder == nil || in == nil {
		return
	}

	f.ladder.SetResonance(f.resonance.Value())
	f.ladder.SetDrive(f.drive.Value())
	f.base.SetTarget(f.cutoff.Value())
	amount := f.modAmount.Value()

	for i := range in {
		hz := f.base.Next()
		if cv != nil && cv[i] != 0 {
			hz = CutoffFor(hz, cv[i], amount)
		}
		f.ladder.SetCutoff(hz)
		in[i] = f.ladder.ProcessSample(in[i])
	}
}

// Release implements module.Module.
func (f *Filter) Release() {
	f.Base.Release()
	if f.ladder != nil {
		f.ladder.Reset()
	}
}

// CutoffFor returns the modulated cutoff the filter targets for a base
// frequency, CV value and modulation amount.
func CutoffFor(base, cv, amount float64) float64 {
	return core.Clamp(base*math.Exp2(cv*amount*FilterOctaveRange), ladder.MinCutoffHz, ladder.MaxCutoffHz)
}
