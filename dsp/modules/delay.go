package modules

import (
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/delay"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/smooth"
)

// MaxDelaySeconds is the longest delay time the buffers hold.
const MaxDelaySeconds = 1.0

const (
	delayTimeSmoothing = 0.05
	mixSmoothing       = 0.005
)

// Delay is a stereo feedback delay with linearly interpolated reads.
// Time, feedback and mix are smoothed so live changes do not zipper.
type Delay struct {
	module.Base

	timeMs   *module.Param
	feedback *module.Param
	mix      *module.Param

	lines   [2]*delay.Line
	delayed *smooth.Linear
	fb      *smooth.Linear
	wet     *smooth.Linear
}

// NewDelay returns a delay with default parameters.
func NewDelay() *Delay {
	d := &Delay{
		timeMs:   module.Float("time", "Time (ms)", 1, MaxDelaySeconds*1000, 250).WithSmoothing(delayTimeSmoothing),
		feedback: module.Float("feedback", "Feedback", 0, 0.95, 0.5).WithSmoothing(mixSmoothing),
		mix:      module.Float("mix", "Mix", 0, 1, 0.3).WithSmoothing(mixSmoothing),
	}
	d.Base = module.NewBase(module.Ports{Name: TypeDelay, Inputs: 2, Outputs: 2},
		d.timeMs, d.feedback, d.mix)
	return d
}

// BufferLen returns the per-channel buffer length for a session.
func BufferLen(sampleRate float64, maxBlockSize int) int {
	return int(math.Ceil(MaxDelaySeconds*sampleRate)) + maxBlockSize
}

// Prepare implements module.Module.
func (d *Delay) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := d.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	size := BufferLen(sampleRate, maxBlockSize)
	for ch := range d.lines {
		line, err := delay.New(size)
		if err != nil {
			return err
		}
		d.lines[ch] = line
	}
	d.delayed = smooth.NewLinear(sampleRate, d.timeMs.Smoothing, d.samples(d.timeMs.Value()))
	d.fb = smooth.NewLinear(sampleRate, d.feedback.Smoothing, d.feedback.Value())
	d.wet = smooth.NewLinear(sampleRate, d.mix.Smoothing, d.mix.Value())
	return nil
}

func (d *Delay) samples(ms float64) float64 {
	return ms * d.SampleRate() / 1000
}

// Process implements module.Module.
func (d *Delay) Process(audio [][]float64, _ *midi.Buffer) {
	left := channel(audio, 0)
	right := channel(audio, 1)
	if d.lines[0] == nil || left == nil || right == nil {
		return
	}

	d.delayed.SetTarget(d.samples(d.timeMs.Value()))
	d.fb.SetTarget(d.feedback.Value())
	d.wet.SetTarget(d.mix.Value())

	for i := range left {
		t := d.delayed.Next()
		fb := d.fb.Next()
		mix := d.wet.Next()

		left[i] = d.tick(d.lines[0], left[i], t, fb, mix)
		right[i] = d.tick(d.lines[1], right[i], t, fb, mix)
	}
}

func (d *Delay) tick(line *delay.Line, x, t, fb, mix float64) float64 {
	delayed := line.ReadLinear(t)
	line.Write(x + fb*delayed)
	return core.Lerp(x, delayed, mix)
}

// Release implements module.Module.
func (d *Delay) Release() {
	d.Base.Release()
	for _, line := range d.lines {
		if line != nil {
			line.Reset()
		}
	}
}
