package graph

import (
	"sync"

	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// constSource writes a constant into each output.
type constSource struct {
	module.Base
	value float64
}

func newConst(v float64, outputs int) *constSource {
	return &constSource{Base: module.NewBase(module.Ports{Name: "Const", Outputs: outputs}), value: v}
}

func (c *constSource) Process(audio [][]float64, _ *midi.Buffer) {
	for ch := range c.NumOutputs() {
		for i := range audio[ch] {
			audio[ch][i] = c.value
		}
	}
}

// visitLog records the order in which probes process.
type visitLog struct {
	mu    sync.Mutex
	order []string
}

func (l *visitLog) add(tag string) {
	l.mu.Lock()
	l.order = append(l.order, tag)
	l.mu.Unlock()
}

// probe passes input 0 to output 0, records its visit, the events it saw
// and whether it was released.
type probe struct {
	module.Base
	tag      string
	log      *visitLog
	seen     []midi.Event
	lastIn   []float64
	released bool
	emit     []midi.Event
}

func newProbe(tag string, log *visitLog) *probe {
	return &probe{
		Base: module.NewBase(module.Ports{Name: "Probe", Inputs: 2, Outputs: 1, MIDIIn: true, MIDIOut: true}),
		tag:  tag,
		log:  log,
	}
}

func (p *probe) Process(audio [][]float64, events *midi.Buffer) {
	if p.log != nil {
		p.log.add(p.tag)
	}
	p.lastIn = append(p.lastIn[:0], audio[0]...)
	p.seen = append(p.seen[:0], events.Events()...)
	for _, e := range p.emit {
		events.Add(e)
	}
}

func (p *probe) Release() {
	p.Base.Release()
	p.released = true
}

// audioOnly has no MIDI ports.
func newAudioOnly() *constSource {
	c := &constSource{Base: module.NewBase(module.Ports{Name: "AudioOnly", Inputs: 1, Outputs: 1})}
	return c
}

func audioPort(id NodeID, ch int) Endpoint { return Endpoint{Node: id, Channel: ch} }

func midiPort(id NodeID) Endpoint { return Endpoint{Node: id, Channel: MIDIChannel} }

func link(src, dst Endpoint) Connection { return Connection{Source: src, Dest: dst} }

func ioBlock(channels, n int) [][]float64 {
	io := make([][]float64, channels)
	for ch := range io {
		io[ch] = make([]float64, n)
	}
	return io
}
