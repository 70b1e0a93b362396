// Package ladder implements a 4-pole nonlinear transistor-ladder low-pass
// filter after Huovilainen, built for per-sample cutoff modulation.
package ladder

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modsynth/dsp/core"
)

const (
	// MinCutoffHz and MaxCutoffHz bound every cutoff request.
	MinCutoffHz = 20.0
	MaxCutoffHz = 20000.0

	minDrive = 1.0
	maxDrive = 10.0

	// thermal is the normalized transistor thermal voltage; the stage
	// integrator gain times the tanh slope stays below one.
	thermal = 1.0

	// maxFeedback sets self-oscillation at resonance 1.
	maxFeedback = 4.0

	maxCutoffRatio = 0.45
	stateLimit     = 16.0
)

// Option configures a Filter at construction.
type Option func(*Filter) error

// WithOversampling runs the nonlinear ladder factor times per input
// sample on linearly interpolated sub-steps. Allowed values: 1, 2, 4.
func WithOversampling(factor int) Option {
	return func(f *Filter) error {
		switch factor {
		case 1, 2, 4:
			f.overSampling = factor
			return nil
		default:
			return fmt.Errorf("ladder: oversampling factor must be one of {1,2,4}: %d", factor)
		}
	}
}

// State is the ladder's runtime state, for save and restore.
type State struct {
	Stage      [4]float64
	StageTanh  [4]float64
	PrevInput  float64
	PrevOutput float64
}

// Filter is a 4-pole resonant low-pass ladder with input drive.
type Filter struct {
	sampleRate float64
	cutoffHz   float64
	resonance  float64
	drive      float64

	overSampling int

	g           float64
	feedback    float64
	outputScale float64

	state    State
	maxCutHz float64
}

// New returns a filter with cutoff 1 kHz, no resonance and unity drive.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("ladder: sample rate must be positive and finite: %v", sampleRate)
	}
	f := &Filter{
		sampleRate:   sampleRate,
		cutoffHz:     1000,
		drive:        1,
		overSampling: 1,
		maxCutHz:     math.Min(MaxCutoffHz, maxCutoffRatio*sampleRate),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.updateCoefficients()
	return f, nil
}

// SampleRate returns the rate the filter was built for.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns the effective (clamped) cutoff.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the resonance in [0, 1].
func (f *Filter) Resonance() float64 { return f.resonance }

// Drive returns the input drive in [1, 10].
func (f *Filter) Drive() float64 { return f.drive }

// Oversampling returns the number of ladder steps per input sample.
func (f *Filter) Oversampling() int { return f.overSampling }

// SetCutoff retunes the filter. The value is clamped to [20 Hz, 20 kHz] and
// kept below Nyquist. It is cheap enough to call every sample.
func (f *Filter) SetCutoff(hz float64) {
	if math.IsNaN(hz) {
		return
	}
	hz = core.Clamp(hz, MinCutoffHz, f.maxCutHz)
	if hz == f.cutoffHz {
		return
	}
	f.cutoffHz = hz
	f.updateCoefficients()
}

// SetResonance sets resonance in [0, 1]; 1 is at the edge of self-oscillation.
func (f *Filter) SetResonance(r float64) {
	if math.IsNaN(r) {
		return
	}
	f.resonance = core.Clamp(r, 0, 1)
	f.updateCoefficients()
}

// SetDrive sets the input gain into the first nonlinearity, clamped to [1, 10].
func (f *Filter) SetDrive(d float64) {
	if math.IsNaN(d) {
		return
	}
	f.drive = core.Clamp(d, minDrive, maxDrive)
}

// Reset clears the ladder state.
func (f *Filter) Reset() {
	f.state = State{}
}

// State returns a copy of the current state.
func (f *Filter) State() State {
	return f.state
}

// SetState restores a saved state.
func (f *Filter) SetState(state State) error {
	values := append(append(state.Stage[:], state.StageTanh[:]...), state.PrevInput, state.PrevOutput)
	for _, v := range values {
		if !core.IsFinite(v) {
			return fmt.Errorf("ladder: state contains NaN or Inf")
		}
	}
	f.state = state
	return nil
}

func (f *Filter) updateCoefficients() {
	fc := f.cutoffHz / (f.sampleRate * float64(f.overSampling))

	fcr := 1.8730*fc*fc*fc + 0.4955*fc*fc - 0.6490*fc + 0.9988
	f.g = 2 * thermal * (1 - math.Exp(-2*math.Pi*fcr*fc))

	resonanceComp := math.Max(0, -3.9364*fc*fc+1.8409*fc+0.9968)
	f.feedback = maxFeedback * f.resonance * resonanceComp
	f.outputScale = 1 + 0.5*f.feedback
}

// ProcessSample filters one sample. Non-finite input is treated as silence.
func (f *Filter) ProcessSample(input float64) float64 {
	if !core.IsFinite(input) {
		input = 0
	}
	if f.overSampling <= 1 {
		f.state.PrevInput = input
		return f.step(input)
	}

	prev := f.state.PrevInput
	delta := (input - prev) / float64(f.overSampling)
	var out float64
	for i := range f.overSampling {
		out = f.step(prev + delta*float64(i+1))
	}
	f.state.PrevInput = input
	return out
}

func (f *Filter) step(input float64) float64 {
	const shape = 1 / (2 * thermal)
	st := &f.state

	fb := 0.5 * (st.Stage[3] + st.PrevOutput)
	x := input*f.drive - f.feedback*fb

	in := math.Tanh(shape * x)
	st.Stage[0] = clip(st.Stage[0] + f.g*(in-st.StageTanh[0]))
	st.StageTanh[0] = math.Tanh(shape * st.Stage[0])

	st.Stage[1] = clip(st.Stage[1] + f.g*(st.StageTanh[0]-st.StageTanh[1]))
	st.StageTanh[1] = math.Tanh(shape * st.Stage[1])

	st.Stage[2] = clip(st.Stage[2] + f.g*(st.StageTanh[1]-st.StageTanh[2]))
	st.StageTanh[2] = math.Tanh(shape * st.Stage[2])

	st.Stage[3] = clip(st.Stage[3] + f.g*(st.StageTanh[2]-st.StageTanh[3]))
	st.StageTanh[3] = math.Tanh(shape * st.Stage[3])

	st.PrevOutput = st.Stage[3]
	return f.outputScale * st.Stage[3]
}

// ProcessInPlace filters buf at the current cutoff.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

func clip(x float64) float64 {
	return core.FlushDenormals(core.Clamp(x, -stateLimit, stateLimit))
}
