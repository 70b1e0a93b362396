package module

import (
	"fmt"

	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
)

// Module is the unit of work in the processing graph.
//
// Process receives max(NumInputs, NumOutputs, 1) channels, each holding
// the block's samples; modules without audio ports read the block length
// from the single scratch channel. On entry channels [0, NumInputs) carry the summed
// upstream signals and the rest are zero; on return channels
// [0, NumOutputs) carry the module's output. The event buffer holds the
// block's incoming MIDI in offset order; modules that produce MIDI add
// their events to it.
type Module interface {
	Name() string
	NumInputs() int
	NumOutputs() int
	AcceptsMIDI() bool
	ProducesMIDI() bool
	Params() *ParamSet

	Prepare(sampleRate float64, maxBlockSize int) error
	Process(audio [][]float64, events *midi.Buffer)
	Release()

	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
}

// Role tells the graph whether a module bridges the host's audio or MIDI.
type Role int

const (
	RoleProcessor Role = iota
	// RoleAudioInput modules receive the host input channels as their
	// output before processing.
	RoleAudioInput
	// RoleAudioOutput modules have their gathered inputs summed into the
	// host output.
	RoleAudioOutput
	// RoleMIDIInput modules receive the host MIDI events.
	RoleMIDIInput
)

// Endpoint is implemented by modules with a host role.
type Endpoint interface {
	Role() Role
}

// RoleOf returns the host role of m.
func RoleOf(m Module) Role {
	if e, ok := m.(Endpoint); ok {
		return e.Role()
	}
	return RoleProcessor
}

// Visualizer is implemented by modules that publish their output for display.
type Visualizer interface {
	Scope() *scope.Buffer
}

// Ports describes the fixed port layout of a module type.
type Ports struct {
	Name    string
	Inputs  int
	Outputs int
	MIDIIn  bool
	MIDIOut bool
}

// Base implements the bookkeeping part of Module. Concrete modules embed
// it and provide Process.
type Base struct {
	ports      Ports
	params     *ParamSet
	sampleRate float64
	blockSize  int
	prepared   bool
}

// NewBase returns a Base with the given ports and parameters.
func NewBase(ports Ports, params ...*Param) Base {
	return Base{ports: ports, params: NewParamSet(params...)}
}

// Name returns the module type name.
func (b *Base) Name() string { return b.ports.Name }

// NumInputs returns the number of audio input channels.
func (b *Base) NumInputs() int { return b.ports.Inputs }

// NumOutputs returns the number of audio output channels.
func (b *Base) NumOutputs() int { return b.ports.Outputs }

// AcceptsMIDI reports whether the module has a MIDI input.
func (b *Base) AcceptsMIDI() bool { return b.ports.MIDIIn }

// ProducesMIDI reports whether the module has a MIDI output.
func (b *Base) ProducesMIDI() bool { return b.ports.MIDIOut }

// Params returns the module's parameter set.
func (b *Base) Params() *ParamSet { return b.params }

// SampleRate returns the rate of the current session, or 0 before Prepare.
func (b *Base) SampleRate() float64 { return b.sampleRate }

// MaxBlockSize returns the largest block Process will be handed.
func (b *Base) MaxBlockSize() int { return b.blockSize }

// Prepared reports whether Prepare succeeded and Release has not run since.
func (b *Base) Prepared() bool { return b.prepared }

// Param returns the parameter with the given id, or nil.
func (b *Base) Param(id string) *Param { return b.params.Get(id) }

// Prepare validates and records the session.
func (b *Base) Prepare(sampleRate float64, maxBlockSize int) error {
	cfg := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: maxBlockSize}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("module %s: prepare: %w", b.ports.Name, err)
	}
	b.sampleRate = sampleRate
	b.blockSize = maxBlockSize
	b.prepared = true
	return nil
}

// Release marks the module unprepared.
func (b *Base) Release() {
	b.prepared = false
}

// MarshalState encodes the parameter values.
func (b *Base) MarshalState() ([]byte, error) {
	return MarshalParams(b.params)
}

// UnmarshalState restores parameter values.
func (b *Base) UnmarshalState(data []byte) error {
	return UnmarshalParams(b.params, data)
}

// Width returns the number of channels the graph hands to Process.
func Width(m Module) int {
	return max(m.NumInputs(), m.NumOutputs(), 1)
}
