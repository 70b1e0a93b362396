package modules

import (
	"testing"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

const (
	testRate  = 48000.0
	testBlock = 512
)

func newBlock(m module.Module, n int) [][]float64 {
	audio := make([][]float64, module.Width(m))
	for ch := range audio {
		audio[ch] = make([]float64, n)
	}
	return audio
}

func prepare(t *testing.T, m module.Module, block int) {
	t.Helper()
	if err := m.Prepare(testRate, block); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
}

func setParam(t *testing.T, m module.Module, id string, v any) {
	t.Helper()
	p := m.Params().Get(id)
	if p == nil {
		t.Fatalf("%s has no parameter %q", m.Name(), id)
	}
	if err := module.ApplyValue(p, v); err != nil {
		t.Fatalf("set %s: %v", id, err)
	}
}

// timedEvent is an event with its absolute sample position.
type timedEvent struct {
	at int
	e  midi.Event
}

// runMIDI processes blocks of a MIDI generator and returns the events it
// emitted with absolute positions.
func runMIDI(m module.Module, blocks, n int) []timedEvent {
	audio := newBlock(m, n)
	events := midi.NewBuffer(midi.DefaultCapacity)
	var out []timedEvent
	for b := range blocks {
		events.Clear()
		m.Process(audio, events)
		for _, e := range events.Events() {
			out = append(out, timedEvent{at: b*n + e.Offset, e: e})
		}
	}
	return out
}
