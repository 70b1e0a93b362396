package modules

import (
	"github.com/cwbudde/algo-modsynth/dsp/buffer"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/smooth"
)

const gainSmoothing = 0.005

// VCA multiplies input 0 by the control signal on input 1 and a smoothed
// gain. With nothing patched into the control input the output is silent.
type VCA struct {
	module.Base

	gain *module.Param

	smoothed *smooth.Linear
}

// NewVCA returns a VCA with default gain.
func NewVCA() *VCA {
	v := &VCA{gain: module.Float("gain", "Gain", 0, 1, 0.5).WithSmoothing(gainSmoothing)}
	v.Base = module.NewBase(module.Ports{Name: TypeVCA, Inputs: 2, Outputs: 1}, v.gain)
	return v
}

// Prepare implements module.Module.
func (v *VCA) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := v.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	v.smoothed = smooth.NewLinear(sampleRate, v.gain.Smoothing, v.gain.Value())
	return nil
}

// Process implements module.Module.
func (v *VCA) Process(audio [][]float64, _ *midi.Buffer) {
	in := channel(audio, 0)
	cv := channel(audio, 1)
	if v.smoothed == nil || in == nil || cv == nil {
		return
	}

	buffer.Multiply(in, cv)

	v.smoothed.SetTarget(v.gain.Value())
	if !v.smoothed.IsSmoothing() {
		buffer.Scale(in, v.smoothed.Current())
		return
	}
	for i := range in {
		in[i] *= v.smoothed.Next()
	}
}
