package modules

import (
	"sync/atomic"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
	"github.com/cwbudde/algo-modsynth/dsp/voice"
)

// PolyVoices is the number of voices of the Poly MIDI module.
const PolyVoices = 8

// PolyMIDI turns a MIDI note stream into per-voice pitch and gate CVs.
// Output v carries voice v's frequency in Hz and output PolyVoices+v its
// gate. The held state is rendered up to each event's offset before the
// event is applied, so several events in one block land on their own
// samples.
type PolyMIDI struct {
	module.Base

	voices *voice.Allocator
	mask   atomic.Uint32
	scope  *scope.Buffer
}

// NewPolyMIDI returns an allocator module with all voices idle.
func NewPolyMIDI() *PolyMIDI {
	p := &PolyMIDI{
		voices: voice.NewAllocator(PolyVoices),
		scope:  scope.New(scope.DefaultSize),
	}
	p.Base = module.NewBase(module.Ports{Name: TypePolyMIDI, Outputs: 2 * PolyVoices, MIDIIn: true})
	return p
}

// Prepare implements module.Module.
func (p *PolyMIDI) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := p.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	p.voices.Reset()
	p.mask.Store(0)
	return nil
}

// Process implements module.Module.
func (p *PolyMIDI) Process(audio [][]float64, events *midi.Buffer) {
	n := blockLen(audio)
	if len(audio) < 2*PolyVoices {
		return
	}

	cursor := newCursor(events)
	pos := 0
	for pos < n {
		next := cursor.nextOffset(n)
		if next > pos {
			p.render(audio, pos, next)
			pos = next
		}
		for e, ok := cursor.due(pos); ok; e, ok = cursor.due(pos) {
			p.apply(e)
		}
		if next == n {
			break
		}
	}
	if pos < n {
		p.render(audio, pos, n)
	}
	// Trailing events stamped at or past the block end.
	for e, ok := cursor.due(n); ok; e, ok = cursor.due(n) {
		p.apply(e)
	}

	p.mask.Store(p.activeMask())
	p.scope.PushBlock(audio[0])
}

func (p *PolyMIDI) render(audio [][]float64, start, end int) {
	for v, vc := range p.voices.Voices() {
		gate := 0.0
		if vc.Active {
			gate = 1
		}
		pitch := audio[v][start:end]
		gates := audio[PolyVoices+v][start:end]
		for i := range pitch {
			pitch[i] = vc.Frequency
			gates[i] = gate
		}
	}
}

func (p *PolyMIDI) apply(e midi.Event) {
	switch {
	case e.IsNoteOn():
		p.voices.NoteOn(e.Note())
	case e.IsNoteOff():
		p.voices.NoteOff(e.Note())
	case e.IsAllNotesOff():
		p.voices.AllNotesOff()
	}
}

func (p *PolyMIDI) activeMask() uint32 {
	var mask uint32
	for i, v := range p.voices.Voices() {
		if v.Active {
			mask |= 1 << i
		}
	}
	return mask
}

// ActiveVoices returns a bit mask of the voices holding a note.
func (p *PolyMIDI) ActiveVoices() uint32 { return p.mask.Load() }

// Voice returns a copy of voice i. Only call it while the module is not
// processing.
func (p *PolyMIDI) Voice(i int) voice.Voice { return p.voices.Voice(i) }

// Scope implements module.Visualizer.
func (p *PolyMIDI) Scope() *scope.Buffer { return p.scope }

// Release implements module.Module.
func (p *PolyMIDI) Release() {
	p.Base.Release()
	p.voices.Reset()
	p.mask.Store(0)
}
