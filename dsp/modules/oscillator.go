package modules

import (
	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/osc"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
)

// minPitchCV is the lowest pitch CV value (in Hz) that overrides the
// frequency parameter. Lower values, including an unconnected input, are
// treated as absent.
const minPitchCV = 1.0

// Oscillator is a band-limited single-voice tone generator. A note-on
// retunes it to the note's pitch without resetting the phase; a pitch CV
// on input 0 overrides the frequency sample by sample.
type Oscillator struct {
	module.Base

	waveform  *module.Param
	frequency *module.Param

	osc   *osc.Oscillator
	scope *scope.Buffer
}

// NewOscillator returns an oscillator with default parameters.
func NewOscillator() *Oscillator {
	o := &Oscillator{
		waveform:  module.Choice("waveform", "Waveform", osc.WaveformNames, int(osc.Sine)),
		frequency: module.Float("frequency", "Frequency", 20, 20000, 440),
		scope:     scope.New(scope.DefaultSize),
	}
	o.Base = module.NewBase(module.Ports{Name: TypeOscillator, Inputs: 1, Outputs: 1, MIDIIn: true},
		o.waveform, o.frequency)
	return o
}

// Prepare implements module.Module.
func (o *Oscillator) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := o.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	if o.osc == nil {
		gen, err := osc.New(sampleRate)
		if err != nil {
			return err
		}
		o.osc = gen
		return nil
	}
	o.osc.SetSampleRate(sampleRate)
	return nil
}

// Process implements module.Module.
func (o *Oscillator) Process(audio [][]float64, events *midi.Buffer) {
	out := channel(audio, 0)
	if o.osc == nil || out == nil {
		return
	}

	o.osc.SetWaveform(osc.Waveform(o.waveform.Index()))
	base := o.frequency.Value()
	cursor := newCursor(events)

	for i := range out {
		for e, ok := cursor.due(i); ok; e, ok = cursor.due(i) {
			if e.IsNoteOn() {
				base = o.frequency.Set(core.NoteToHz(float64(e.Note())))
			}
		}

		hz := base
		if cv := out[i]; cv >= minPitchCV {
			hz = cv
		}
		o.osc.SetFrequency(hz)
		out[i] = o.osc.Next()
	}

	o.scope.PushBlock(out)
}

// Release implements module.Module.
func (o *Oscillator) Release() {
	o.Base.Release()
	if o.osc != nil {
		o.osc.Reset()
	}
}

// Scope implements module.Visualizer.
func (o *Oscillator) Scope() *scope.Buffer { return o.scope }
