package modules

import "github.com/cwbudde/algo-modsynth/dsp/module"

// Registered module type names.
const (
	TypeOscillator    = "Oscillator"
	TypeFilter        = "Filter"
	TypeVCA           = "VCA"
	TypeADSR          = "ADSR"
	TypeSequencer     = "Sequencer"
	TypeLFO           = "LFO"
	TypeDistortion    = "Distortion"
	TypeDelay         = "Delay"
	TypeReverb        = "Reverb"
	TypeKeyboard      = "MIDI Keyboard"
	TypeAudioInput    = "Audio Input"
	TypeAudioOutput   = "Audio Output"
	TypeMIDIInput     = "Midi Input"
	TypePolyMIDI      = "Poly MIDI"
	TypePolySequencer = "Poly Sequencer"
)

// DefaultRegistry returns a registry holding every module type.
func DefaultRegistry() *module.Registry {
	r := module.NewRegistry()
	r.MustRegister(TypeOscillator, func() module.Module { return NewOscillator() })
	r.MustRegister(TypeFilter, func() module.Module { return NewFilter() })
	r.MustRegister(TypeVCA, func() module.Module { return NewVCA() })
	r.MustRegister(TypeADSR, func() module.Module { return NewADSR() })
	r.MustRegister(TypeSequencer, func() module.Module { return NewSequencer() })
	r.MustRegister(TypeLFO, func() module.Module { return NewLFO() })
	r.MustRegister(TypeDistortion, func() module.Module { return NewDistortion() })
	r.MustRegister(TypeDelay, func() module.Module { return NewDelay() })
	r.MustRegister(TypeReverb, func() module.Module { return NewReverb() })
	r.MustRegister(TypeKeyboard, func() module.Module { return NewKeyboard() })
	r.MustRegister(TypeAudioInput, func() module.Module { return NewAudioInput() })
	r.MustRegister(TypeAudioOutput, func() module.Module { return NewAudioOutput() })
	r.MustRegister(TypeMIDIInput, func() module.Module { return NewMIDIInput() })
	r.MustRegister(TypePolyMIDI, func() module.Module { return NewPolyMIDI() })
	r.MustRegister(TypePolySequencer, func() module.Module { return NewPolySequencer() })
	return r
}
