package modules

import (
	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/delay"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/shaper"
	"github.com/cwbudde/algo-modsynth/dsp/smooth"
)

// dryLineSize covers the oversampler latency with room for interpolation.
const dryLineSize = 8

// Distortion is a stereo soft clipper, x*d/(1+|x*d|), optionally run at
// twice the sample rate to keep the generated harmonics from aliasing.
// When oversampling, the dry signal is delayed by the oversampler's
// latency before mixing.
type Distortion struct {
	module.Base

	drive      *module.Param
	mix        *module.Param
	oversample *module.Param

	over   [2]*shaper.Oversampler2x
	dry    [2]*delay.Line
	wet    *smooth.Linear
	amount float64
	curve  func(float64) float64
}

// NewDistortion returns a distortion with default parameters.
func NewDistortion() *Distortion {
	d := &Distortion{
		drive:      module.Float("drive", "Drive", 1, 10, 1),
		mix:        module.Float("mix", "Mix", 0, 1, 0.5).WithSmoothing(mixSmoothing),
		oversample: module.Bool("oversample", "Oversample", true),
	}
	d.curve = d.saturate
	d.Base = module.NewBase(module.Ports{Name: TypeDistortion, Inputs: 2, Outputs: 2},
		d.drive, d.mix, d.oversample)
	return d
}

// Prepare implements module.Module.
func (d *Distortion) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := d.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	for ch := range d.over {
		o, err := shaper.NewOversampler2x(sampleRate)
		if err != nil {
			return err
		}
		d.over[ch] = o
		line, err := delay.New(dryLineSize)
		if err != nil {
			return err
		}
		d.dry[ch] = line
	}
	d.wet = smooth.NewLinear(sampleRate, d.mix.Smoothing, d.mix.Value())
	return nil
}

func (d *Distortion) saturate(x float64) float64 {
	return shaper.Saturate(x, d.amount)
}

// Process implements module.Module.
func (d *Distortion) Process(audio [][]float64, _ *midi.Buffer) {
	if d.wet == nil || len(audio) < 2 {
		return
	}

	d.amount = d.drive.Value()
	d.wet.SetTarget(d.mix.Value())
	oversample := d.oversample.Bool()

	for i := range audio[0] {
		mix := d.wet.Next()
		for ch := range 2 {
			x := audio[ch][i]
			d.dry[ch].Write(x)
			var y float64
			if oversample {
				y = d.over[ch].ProcessSample(x, d.curve)
				x = d.dry[ch].ReadLinear(1 + d.over[ch].Latency())
			} else {
				y = d.curve(x)
			}
			audio[ch][i] = core.Lerp(x, y, mix)
		}
	}
}

// Release implements module.Module.
func (d *Distortion) Release() {
	d.Base.Release()
	for ch, o := range d.over {
		if o != nil {
			o.Reset()
			d.dry[ch].Reset()
		}
	}
}
