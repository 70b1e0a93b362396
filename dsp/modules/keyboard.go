package modules

import (
	"sync"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

const (
	keyboardQueueSize = 256
	keyboardVelocity  = 100
)

// Keyboard is an on-screen or remote MIDI keyboard. Control goroutines
// call NoteOn and NoteOff; the events are emitted at the start of the next
// block, transposed by the octave parameter.
type Keyboard struct {
	module.Base

	octave *module.Param

	mu      sync.Mutex // serializes producers
	queue   *midi.Queue
	pending *midi.Buffer
}

// NewKeyboard returns a keyboard at octave 0.
func NewKeyboard() *Keyboard {
	k := &Keyboard{
		octave:  module.Int("octave", "Octave", -2, 2, 0),
		queue:   midi.NewQueue(keyboardQueueSize),
		pending: midi.NewBuffer(keyboardQueueSize),
	}
	k.Base = module.NewBase(module.Ports{Name: TypeKeyboard, MIDIOut: true}, k.octave)
	return k
}

// NoteOn queues a key press. It reports false if the queue is full.
func (k *Keyboard) NoteOn(note, velocity int) bool {
	if velocity <= 0 {
		velocity = keyboardVelocity
	}
	return k.push(note, midi.NoteOn(midi.DefaultChannel, uint8(note), uint8(min(velocity, 127)), 0))
}

// NoteOff queues a key release.
func (k *Keyboard) NoteOff(note int) bool {
	return k.push(note, midi.NoteOff(midi.DefaultChannel, uint8(note), 0))
}

func (k *Keyboard) push(note int, e midi.Event) bool {
	if note < 0 || note > 127 {
		return false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.queue.Push(e)
}

// Process implements module.Module.
func (k *Keyboard) Process(_ [][]float64, events *midi.Buffer) {
	if events == nil {
		return
	}
	k.pending.Clear()
	k.queue.DrainInto(k.pending, 0)
	shift := k.octave.Int() * 12
	for _, e := range k.pending.Events() {
		events.Add(e.Transpose(shift))
	}
}
