package modules

import (
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/reverb"
)

// Reverb is a stereo Freeverb-style room.
type Reverb struct {
	module.Base

	roomSize *module.Param
	damping  *module.Param
	wet      *module.Param
	dry      *module.Param
	width    *module.Param

	rv *reverb.Reverb
}

// NewReverb returns a reverb with default parameters.
func NewReverb() *Reverb {
	r := &Reverb{
		roomSize: module.Float("roomSize", "Room Size", 0, 1, 0.5),
		damping:  module.Float("damping", "Damping", 0, 1, 0.5),
		wet:      module.Float("wet", "Wet", 0, 1, 0.33),
		dry:      module.Float("dry", "Dry", 0, 1, 0.4),
		width:    module.Float("width", "Width", 0, 1, 1),
	}
	r.Base = module.NewBase(module.Ports{Name: TypeReverb, Inputs: 2, Outputs: 2},
		r.roomSize, r.damping, r.wet, r.dry, r.width)
	return r
}

// Prepare implements module.Module.
func (r *Reverb) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := r.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	rv, err := reverb.New(sampleRate)
	if err != nil {
		return err
	}
	r.rv = rv
	return nil
}

// Process implements module.Module.
func (r *Reverb) Process(audio [][]float64, _ *midi.Buffer) {
	if r.rv == nil || len(audio) < 2 {
		return
	}
	r.rv.SetParameters(r.roomSize.Value(), r.damping.Value(), r.wet.Value(), r.dry.Value(), r.width.Value())
	r.rv.ProcessStereo(audio[0], audio[1])
}

// Release implements module.Module.
func (r *Reverb) Release() {
	r.Base.Release()
	if r.rv != nil {
		r.rv.Reset()
	}
}
