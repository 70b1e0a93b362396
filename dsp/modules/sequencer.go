package modules

import (
	"strconv"
	"sync/atomic"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// SequencerVelocity is the velocity of every generated note.
const SequencerVelocity = 100

var defaultSequence = [NumSteps]int{53, 65, 54, 61, 53, 57, 54, 60}

// Sequencer is an 8-step monophonic MIDI sequencer. Each step has a
// pitch, a gate length as a fraction of the beat and a filter envelope
// amount sent as CC74 just before the note. Pitch 0 is a rest.
type Sequencer struct {
	module.Base

	run   *module.Param
	bpm   *module.Param
	gate  [NumSteps]*module.Param
	pitch [NumSteps]*module.Param
	fenv  [NumSteps]*module.Param

	clock    stepClock
	current  int
	active   atomic.Int32
	lastNote int
	events   *midi.Buffer
}

// NewSequencer returns a stopped sequencer with the default phrase.
func NewSequencer() *Sequencer {
	s := &Sequencer{
		run:      module.Bool("run", "Run", false),
		bpm:      module.Float("bpm", "BPM", 30, 300, 120),
		lastNote: -1,
	}
	params := []*module.Param{s.run, s.bpm}
	for i := range NumSteps {
		s.gate[i] = gateParam(i)
		params = append(params, s.gate[i])
	}
	for i := range NumSteps {
		name := "Pitch " + strconv.Itoa(i+1)
		s.pitch[i] = module.Int(name, name, 0, 127, defaultSequence[i])
		params = append(params, s.pitch[i])
	}
	for i := range NumSteps {
		name := "F.Env " + strconv.Itoa(i+1)
		s.fenv[i] = module.Float(name, name, 0, 1, 0.5)
		params = append(params, s.fenv[i])
	}
	s.Base = module.NewBase(module.Ports{Name: TypeSequencer, MIDIOut: true}, params...)
	return s
}

func gateParam(i int) *module.Param {
	name := "Gate " + strconv.Itoa(i+1)
	return module.Float(name, name, 0.1, 1, 0.5)
}

// Prepare implements module.Module.
func (s *Sequencer) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := s.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	s.clock.reset()
	s.current = 0
	s.active.Store(0)
	s.lastNote = -1
	return nil
}

// ActiveStep returns the step most recently started.
func (s *Sequencer) ActiveStep() int { return int(s.active.Load()) }

// Process implements module.Module.
func (s *Sequencer) Process(audio [][]float64, events *midi.Buffer) {
	n := blockLen(audio)
	if events == nil || s.SampleRate() == 0 {
		return
	}

	if !s.run.Bool() {
		if s.lastNote > 0 {
			events.Add(midi.NoteOff(midi.DefaultChannel, uint8(s.lastNote), 0))
			s.lastNote = -1
		}
		s.clock.reset()
		return
	}

	s.events = events
	s.clock.run(n, 60/s.bpm.Value()*s.SampleRate(), s)
	s.events = nil
}

func (s *Sequencer) step(offset int) int {
	step := s.current
	s.active.Store(int32(step))
	s.current = (s.current + 1) % NumSteps

	s.gateOff(offset)

	note := s.pitch[step].Int()
	if note <= 0 {
		return 0
	}
	cc := uint8(s.fenv[step].Value() * 127)
	s.events.Add(midi.ControlChange(midi.DefaultChannel, midi.CCCutoff, cc, offset))
	s.events.Add(midi.NoteOn(midi.DefaultChannel, uint8(note), SequencerVelocity, offset))
	s.lastNote = note
	return max(int(60/s.bpm.Value()*s.SampleRate()*s.gate[step].Value()), 1)
}

func (s *Sequencer) gateOff(offset int) {
	if s.lastNote > 0 {
		s.events.Add(midi.NoteOff(midi.DefaultChannel, uint8(s.lastNote), offset))
		s.lastNote = -1
	}
}
