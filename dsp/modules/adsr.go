package modules

import (
	"github.com/cwbudde/algo-modsynth/dsp/envelope"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// gateThreshold splits a gate CV into high and low.
const gateThreshold = 0.5

// ADSR renders an envelope into output 0. It is triggered by MIDI notes
// and by rising and falling edges of the gate CV on input 0, so it can sit
// behind either a sequencer or a Poly MIDI gate output.
type ADSR struct {
	module.Base

	attack  *module.Param
	decay   *module.Param
	sustain *module.Param
	release *module.Param

	env      *envelope.ADSR
	gateHigh bool
	held     int
}

// NewADSR returns an envelope with default times.
func NewADSR() *ADSR {
	a := &ADSR{
		attack:  module.Float("attack", "Attack", 0.01, 5, 0.05),
		decay:   module.Float("decay", "Decay", 0.01, 5, 0.2),
		sustain: module.Float("sustain", "Sustain", 0, 1, 0),
		release: module.Float("release", "Release", 0.01, 5, 0.1),
	}
	a.Base = module.NewBase(module.Ports{Name: TypeADSR, Inputs: 1, Outputs: 1, MIDIIn: true},
		a.attack, a.decay, a.sustain, a.release)
	return a
}

// Prepare implements module.Module.
func (a *ADSR) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := a.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	if a.env == nil {
		a.env = envelope.New(sampleRate)
	} else {
		a.env.SetSampleRate(sampleRate)
	}
	return nil
}

// Process implements module.Module.
func (a *ADSR) Process(audio [][]float64, events *midi.Buffer) {
	out := channel(audio, 0)
	if a.env == nil || out == nil {
		return
	}

	a.env.SetADSR(a.attack.Value(), a.decay.Value(), a.sustain.Value(), a.release.Value())
	cursor := newCursor(events)

	for i := range out {
		for e, ok := cursor.due(i); ok; e, ok = cursor.due(i) {
			a.handle(e)
		}

		high := out[i] >= gateThreshold
		if high != a.gateHigh {
			a.gateHigh = high
			if high {
				a.env.NoteOn()
			} else if a.held == 0 {
				a.env.NoteOff()
			}
		}

		out[i] = a.env.Next()
	}
}

func (a *ADSR) handle(e midi.Event) {
	switch {
	case e.IsNoteOn():
		a.held++
		a.env.NoteOn()
	case e.IsNoteOff():
		a.held = max(a.held-1, 0)
		a.env.NoteOff()
	case e.IsAllNotesOff():
		a.held = 0
		a.env.NoteOff()
	}
}

// Stage returns the current envelope stage.
func (a *ADSR) Stage() envelope.Stage {
	if a.env == nil {
		return envelope.Idle
	}
	return a.env.Stage()
}

// Release implements module.Module.
func (a *ADSR) Release() {
	a.Base.Release()
	a.gateHigh = false
	a.held = 0
	if a.env != nil {
		a.env.Reset()
	}
}
