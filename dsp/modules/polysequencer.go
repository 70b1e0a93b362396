package modules

import (
	"math/rand/v2"
	"strconv"
	"sync/atomic"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// Chord types of the poly sequencer.
const (
	ChordUnison = iota
	ChordMajor
	ChordMinor
	ChordMaj7
	ChordMin7
	ChordFifths
	ChordOctaves
	ChordRandom
)

// ChordNames lists the chord choices in order.
var ChordNames = []string{"Unison", "Major", "Minor", "Maj7", "Min7", "5ths", "Octs", "Random"}

var chordIntervals = [...][]int{
	ChordUnison:  {0},
	ChordMajor:   {0, 4, 7},
	ChordMinor:   {0, 3, 7},
	ChordMaj7:    {0, 4, 7, 11},
	ChordMin7:    {0, 3, 7, 10},
	ChordFifths:  {0, 7},
	ChordOctaves: {0, 12},
}

// lowestRoot is the lowest root played as written; lower roots fall back
// to fallbackRoot.
const (
	lowestRoot   = 24
	fallbackRoot = 48
	maxChord     = 4
)

var defaultRoots = [NumSteps]int{48, 52, 55, 60, 48, 55, 52, 60}

// PolySequencer is an 8-step chord sequencer. Each step plays a chord
// built from a root note and an interval table.
type PolySequencer struct {
	module.Base

	run   *module.Param
	bpm   *module.Param
	gate  [NumSteps]*module.Param
	root  [NumSteps]*module.Param
	chord [NumSteps]*module.Param

	clock   stepClock
	current int
	active  atomic.Int32
	notes   [maxChord]int
	count   int
	rng     *rand.Rand
	events  *midi.Buffer
}

// NewPolySequencer returns a stopped chord sequencer.
func NewPolySequencer() *PolySequencer {
	s := &PolySequencer{
		run: module.Bool("run", "Run", false),
		bpm: module.Float("bpm", "BPM", 30, 300, 120),
		rng: rand.New(rand.NewPCG(0xc0de, 0x7)),
	}
	params := []*module.Param{s.run, s.bpm}
	for i := range NumSteps {
		s.gate[i] = gateParam(i)
		params = append(params, s.gate[i])
	}
	for i := range NumSteps {
		prefix := "Step " + strconv.Itoa(i+1) + " "
		s.root[i] = module.Int(prefix+"Root", prefix+"Root", 0, 127, defaultRoots[i])
		s.chord[i] = module.Choice(prefix+"Chord", prefix+"Chord", ChordNames, ChordUnison)
		params = append(params, s.root[i], s.chord[i])
	}
	s.Base = module.NewBase(module.Ports{Name: TypePolySequencer, MIDIOut: true}, params...)
	return s
}

// Prepare implements module.Module.
func (s *PolySequencer) Prepare(sampleRate float64, maxBlockSize int) error {
	if err := s.Base.Prepare(sampleRate, maxBlockSize); err != nil {
		return err
	}
	s.clock.reset()
	s.current = 0
	s.active.Store(0)
	s.count = 0
	return nil
}

// ActiveStep returns the step most recently started.
func (s *PolySequencer) ActiveStep() int { return int(s.active.Load()) }

// Process implements module.Module.
func (s *PolySequencer) Process(audio [][]float64, events *midi.Buffer) {
	if events == nil || s.SampleRate() == 0 {
		return
	}
	s.events = events
	defer func() { s.events = nil }()

	if !s.run.Bool() {
		s.gateOff(0)
		s.clock.reset()
		return
	}
	s.clock.run(blockLen(audio), 60/s.bpm.Value()*s.SampleRate(), s)
}

// Chord returns the notes a step plays for the given root and chord type.
// Notes outside the MIDI range are dropped.
func (s *PolySequencer) Chord(root, chord int, dst []int) []int {
	if root < lowestRoot {
		root = fallbackRoot
	}
	dst = dst[:0]
	add := func(n int) {
		if n >= 0 && n <= 127 {
			dst = append(dst, n)
		}
	}
	if chord == ChordRandom {
		add(root)
		add(root + s.rng.IntN(12))
		add(root - s.rng.IntN(12))
		return dst
	}
	if chord < 0 || chord >= len(chordIntervals) {
		chord = ChordUnison
	}
	for _, iv := range chordIntervals[chord] {
		add(root + iv)
	}
	return dst
}

func (s *PolySequencer) step(offset int) int {
	step := s.current
	s.active.Store(int32(step))
	s.current = (s.current + 1) % NumSteps

	s.gateOff(offset)

	chord := s.Chord(s.root[step].Int(), s.chord[step].Index(), s.notes[:0])
	for _, n := range chord {
		s.events.Add(midi.NoteOn(midi.DefaultChannel, uint8(n), SequencerVelocity, offset))
	}
	s.count = len(chord)
	if s.count == 0 {
		return 0
	}
	return max(int(60/s.bpm.Value()*s.SampleRate()*s.gate[step].Value()), 1)
}

func (s *PolySequencer) gateOff(offset int) {
	for _, n := range s.notes[:s.count] {
		s.events.Add(midi.NoteOff(midi.DefaultChannel, uint8(n), offset))
	}
	s.count = 0
}
