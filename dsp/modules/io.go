package modules

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
)

const midiInputQueueSize = 1024

// AudioInput exposes the host's input channels as its two outputs.
type AudioInput struct {
	module.Base
}

// NewAudioInput returns the host input endpoint.
func NewAudioInput() *AudioInput {
	return &AudioInput{Base: module.NewBase(module.Ports{Name: TypeAudioInput, Outputs: 2})}
}

// Role implements module.Endpoint.
func (*AudioInput) Role() module.Role { return module.RoleAudioInput }

// Process implements module.Module. The graph has already copied the host
// input into the block.
func (*AudioInput) Process([][]float64, *midi.Buffer) {}

// AudioOutput sums everything patched into its two inputs into the host
// output.
type AudioOutput struct {
	module.Base

	scope *scope.Buffer
}

// NewAudioOutput returns the host output endpoint.
func NewAudioOutput() *AudioOutput {
	return &AudioOutput{
		Base:  module.NewBase(module.Ports{Name: TypeAudioOutput, Inputs: 2}),
		scope: scope.New(scope.DefaultSize),
	}
}

// Role implements module.Endpoint.
func (*AudioOutput) Role() module.Role { return module.RoleAudioOutput }

// Process implements module.Module. It only publishes the left channel
// for display; the graph copies the block to the host.
func (o *AudioOutput) Process(audio [][]float64, _ *midi.Buffer) {
	if left := channel(audio, 0); left != nil {
		o.scope.PushBlock(left)
	}
}

// Scope implements module.Visualizer.
func (o *AudioOutput) Scope() *scope.Buffer { return o.scope }

// MIDIInput forwards the host's MIDI and any raw messages pushed from
// device or network goroutines.
type MIDIInput struct {
	module.Base

	mu    sync.Mutex // serializes producers
	queue *midi.Queue
}

// NewMIDIInput returns the host MIDI endpoint.
func NewMIDIInput() *MIDIInput {
	return &MIDIInput{
		Base:  module.NewBase(module.Ports{Name: TypeMIDIInput, MIDIOut: true}),
		queue: midi.NewQueue(midiInputQueueSize),
	}
}

// Role implements module.Endpoint.
func (*MIDIInput) Role() module.Role { return module.RoleMIDIInput }

// Push decodes a raw message and queues it for the next block. It reports
// false for messages the synth does not use and when the queue is full.
func (m *MIDIInput) Push(msg gomidi.Message) bool {
	e, ok := midi.FromMessage(msg, 0)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Push(e)
}

// Process implements module.Module.
func (m *MIDIInput) Process(_ [][]float64, events *midi.Buffer) {
	if events != nil {
		m.queue.DrainInto(events, 0)
	}
}
