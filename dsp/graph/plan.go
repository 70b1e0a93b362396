package graph

import (
	"github.com/cwbudde/algo-modsynth/dsp/buffer"
	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// HostChannels is the number of host audio channels the Audio Input and
// Audio Output endpoints exchange.
const HostChannels = 2

// maxIOChannels bounds the host channel views kept for chunked rendering.
const maxIOChannels = 16

// plan is an immutable render program for one topology and session.
type plan struct {
	blockSize int
	order     []NodeID
	steps     []step

	hostIn      *buffer.Multi
	chunkIO     [][]float64
	chunkEvents *midi.Buffer
}

type step struct {
	id       NodeID
	mod      module.Module
	role     module.Role
	audio    *buffer.Multi
	events   *midi.Buffer
	wires    []wire
	midiFrom []int
}

// wire routes one source channel into one destination channel. Several
// wires into the same destination channel are summed.
type wire struct {
	from  int
	srcCh int
	dstCh int
}

// compile builds a plan for the current topology. g.mu must be held.
func (g *Graph) compile() *plan {
	order := g.schedule()
	p := &plan{
		blockSize:   g.blockSize,
		order:       order,
		steps:       make([]step, len(order)),
		hostIn:      buffer.NewMulti(HostChannels, g.blockSize),
		chunkIO:     make([][]float64, maxIOChannels),
		chunkEvents: midi.NewBuffer(midi.DefaultCapacity),
	}

	pos := make(map[NodeID]int, len(order))
	for i, id := range order {
		m := g.byID[id].Module
		pos[id] = i
		p.steps[i] = step{
			id:     id,
			mod:    m,
			role:   module.RoleOf(m),
			audio:  buffer.NewMulti(module.Width(m), g.blockSize),
			events: midi.NewBuffer(midi.DefaultCapacity),
		}
	}

	for _, c := range g.conns {
		from, to := pos[c.Source.Node], pos[c.Dest.Node]
		st := &p.steps[to]
		if c.IsMIDI() {
			st.midiFrom = append(st.midiFrom, from)
			continue
		}
		st.wires = append(st.wires, wire{from: from, srcCh: c.Source.Channel, dstCh: c.Dest.Channel})
	}
	return p
}

// Process renders one block. io carries the host input on entry and the
// summed Audio Output signals on return; events carries the host MIDI for
// Midi Input nodes. Blocks longer than the prepared size are rendered in
// prepared-size chunks. An unprepared graph outputs silence.
func (g *Graph) Process(io [][]float64, events *midi.Buffer) {
	if len(io) == 0 {
		return
	}
	n := len(io[0])

	g.renderMu.Lock()
	defer g.renderMu.Unlock()

	p := g.plan
	if p == nil {
		core.ZeroChannels(io, n)
		return
	}

	if n <= p.blockSize {
		p.render(io, events, n)
		return
	}

	chans := min(len(io), maxIOChannels)
	for start := 0; start < n; start += p.blockSize {
		end := min(start+p.blockSize, n)
		view := p.chunkIO[:chans]
		for ch := range view {
			view[ch] = io[ch][start:end]
		}
		chunkEvents := events
		if events != nil {
			p.chunkEvents.Clear()
			p.chunkEvents.AddRange(events, start, end)
			chunkEvents = p.chunkEvents
		}
		p.render(view, chunkEvents, end-start)
	}
	for ch := chans; ch < len(io); ch++ {
		clear(io[ch])
	}
}

func (p *plan) render(io [][]float64, events *midi.Buffer, n int) {
	hostIn := p.hostIn.Block(n)
	for ch := range hostIn {
		if ch < len(io) {
			copy(hostIn[ch], io[ch][:n])
		} else {
			clear(hostIn[ch])
		}
	}
	core.ZeroChannels(io, n)

	for i := range p.steps {
		st := &p.steps[i]
		audio := st.audio.Block(n)
		core.ZeroChannels(audio, n)

		if st.role == module.RoleAudioInput {
			for ch := range min(st.mod.NumOutputs(), len(hostIn), len(audio)) {
				copy(audio[ch], hostIn[ch])
			}
		}
		for _, w := range st.wires {
			buffer.Accumulate(audio[w.dstCh], p.steps[w.from].audio.Channel(w.srcCh, n))
		}

		st.events.Clear()
		if st.role == module.RoleMIDIInput && events != nil {
			st.events.AddAll(events, 0)
		}
		for _, from := range st.midiFrom {
			st.events.AddAll(p.steps[from].events, 0)
		}

		st.mod.Process(audio, st.events)

		if st.role == module.RoleAudioOutput {
			for ch := range min(st.mod.NumInputs(), len(io), len(audio)) {
				buffer.Accumulate(io[ch][:n], audio[ch])
			}
		}
	}
}
