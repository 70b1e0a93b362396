package patch

import (
	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/modules"
)

// Document ids of the default patch.
const (
	defaultInput = iota + 1
	defaultOutput
	defaultSequencer
	defaultOscillator
	defaultFilter
	defaultVCA
	defaultAmpEnv
	defaultFilterEnv
	defaultLFO
	defaultDistortion
	defaultDelay
	defaultReverb
)

// DefaultDocument returns the start-up patch: a sequencer driving an
// oscillator through a filter and VCA, each with its own envelope, into
// distortion, delay and reverb.
func DefaultDocument() *Document {
	node := func(id int, typ string, x, y float64, params map[string]any) NodeDoc {
		return NodeDoc{ID: id, Type: typ, Params: params, Position: &graph.Position{X: x, Y: y}}
	}
	audio := func(src, srcPort, dst, dstPort int) ConnectionDoc {
		return ConnectionDoc{Src: src, SrcPort: srcPort, Dst: dst, DstPort: dstPort}
	}
	midiLink := func(src, dst int) ConnectionDoc {
		return ConnectionDoc{Src: src, SrcPort: graph.MIDIChannel, Dst: dst, DstPort: graph.MIDIChannel, IsMIDI: true}
	}

	return &Document{
		Nodes: []NodeDoc{
			node(defaultInput, modules.TypeAudioInput, 10, 10, nil),
			node(defaultOutput, modules.TypeAudioOutput, 2250, 300, nil),
			node(defaultSequencer, modules.TypeSequencer, 10, 80, map[string]any{"run": true}),
			node(defaultOscillator, modules.TypeOscillator, 540, 50, map[string]any{"waveform": "Saw"}),
			node(defaultFilter, modules.TypeFilter, 830, 50, nil),
			node(defaultVCA, modules.TypeVCA, 1120, 50, nil),
			node(defaultAmpEnv, modules.TypeADSR, 540, 450, map[string]any{"sustain": 0.6}),
			node(defaultFilterEnv, modules.TypeADSR, 845, 430, nil),
			node(defaultLFO, modules.TypeLFO, 70, 500, nil),
			node(defaultDistortion, modules.TypeDistortion, 1410, 50, nil),
			node(defaultDelay, modules.TypeDelay, 1690, 50, nil),
			node(defaultReverb, modules.TypeReverb, 1970, 50, nil),
		},
		Connections: []ConnectionDoc{
			midiLink(defaultSequencer, defaultOscillator),
			midiLink(defaultSequencer, defaultAmpEnv),
			midiLink(defaultSequencer, defaultFilterEnv),
			audio(defaultOscillator, 0, defaultFilter, 0),
			audio(defaultFilter, 0, defaultVCA, 0),
			audio(defaultAmpEnv, 0, defaultVCA, 1),
			audio(defaultFilterEnv, 0, defaultFilter, 1),
			midiLink(defaultSequencer, defaultFilter),
			audio(defaultVCA, 0, defaultDistortion, 0),
			audio(defaultVCA, 0, defaultDistortion, 1),
			audio(defaultDistortion, 0, defaultDelay, 0),
			audio(defaultDistortion, 1, defaultDelay, 1),
			audio(defaultDelay, 0, defaultReverb, 0),
			audio(defaultDelay, 1, defaultReverb, 1),
			audio(defaultReverb, 0, defaultOutput, 0),
			audio(defaultReverb, 1, defaultOutput, 1),
		},
	}
}
