package graph

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// MIDIChannel is the port value addressing a node's MIDI input or output.
// It is distinct from every audio channel index.
const MIDIChannel = -4096

// Connection validation errors.
var (
	ErrUnknownNode  = errors.New("graph: unknown node")
	ErrKindMismatch = errors.New("graph: audio and MIDI ports cannot be connected")
	ErrDirection    = errors.New("graph: port has no such direction")
	ErrChannelRange = errors.New("graph: channel out of range")
	ErrDuplicate    = errors.New("graph: connection exists")
	ErrCycle        = errors.New("graph: connection would create a cycle")
)

// NodeID identifies a node. Identifiers are never reused by a graph.
type NodeID int

// Position is the editor layout of a node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Endpoint addresses one port: an audio channel or MIDIChannel.
type Endpoint struct {
	Node    NodeID
	Channel int
}

// IsMIDI reports whether the endpoint is a MIDI port.
func (e Endpoint) IsMIDI() bool { return e.Channel == MIDIChannel }

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	Source Endpoint
	Dest   Endpoint
}

// IsMIDI reports whether the connection carries MIDI.
func (c Connection) IsMIDI() bool { return c.Source.IsMIDI() }

// String implements fmt.Stringer.
func (c Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.Source, c.Dest)
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	if e.IsMIDI() {
		return fmt.Sprintf("%d:midi", e.Node)
	}
	return fmt.Sprintf("%d:%d", e.Node, e.Channel)
}

// Node is a module placed in the graph.
type Node struct {
	ID       NodeID
	Module   module.Module
	Position Position
}

// Graph owns nodes and connections.
type Graph struct {
	mu     sync.Mutex
	nodes  []*Node // insertion order
	byID   map[NodeID]*Node
	conns  []Connection
	nextID NodeID

	prepared   bool
	sampleRate float64
	blockSize  int

	// renderMu is held by Process for a whole block and by control
	// goroutines only to swap the plan.
	renderMu sync.Mutex
	plan     *plan
}

// New returns an empty, unprepared graph.
func New() *Graph {
	return &Graph{byID: make(map[NodeID]*Node), nextID: 1}
}

// AddNode takes ownership of m and returns its identifier. If the graph is
// prepared the module is prepared before it joins the render plan.
func (g *Graph) AddNode(m module.Module) (NodeID, error) {
	var id NodeID
	err := g.Edit(func(e *Editor) error {
		var err error
		id, err = e.AddNode(m, Position{})
		return err
	})
	return id, err
}

// RemoveNode removes a node and every connection touching it. Unknown ids
// are ignored.
func (g *Graph) RemoveNode(id NodeID) {
	_ = g.Edit(func(e *Editor) error {
		e.RemoveNode(id)
		return nil
	})
}

// AddConnection validates and adds c. On error the graph is unchanged.
func (g *Graph) AddConnection(c Connection) error {
	return g.Edit(func(e *Editor) error {
		return e.AddConnection(c)
	})
}

// RemoveConnection removes an exact match of c and reports whether it
// existed.
func (g *Graph) RemoveConnection(c Connection) bool {
	var removed bool
	_ = g.Edit(func(e *Editor) error {
		removed = e.RemoveConnection(c)
		return nil
	})
	return removed
}

// SetPosition updates a node's layout.
func (g *Graph) SetPosition(id NodeID, pos Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.byID[id]
	if n == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	n.Position = pos
	return nil
}

// Clear removes every node and connection.
func (g *Graph) Clear() {
	_ = g.Edit(func(e *Editor) error {
		e.Clear()
		return nil
	})
}

// Nodes returns a snapshot of the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotNodes()
}

func (g *Graph) snapshotNodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
	}
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.byID[id]
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

// Module returns the module of node id, or nil.
func (g *Graph) Module(id NodeID) module.Module {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n := g.byID[id]; n != nil {
		return n.Module
	}
	return nil
}

// Connections returns a snapshot of the connections in insertion order.
func (g *Graph) Connections() []Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.conns)
}

// Snapshot returns the nodes and connections as one consistent view.
func (g *Graph) Snapshot() ([]Node, []Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotNodes(), slices.Clone(g.conns)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Order returns the node execution order.
func (g *Graph) Order() []NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.schedule()
}

// Prepared reports whether PrepareToPlay has been called.
func (g *Graph) Prepared() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prepared
}

// PrepareToPlay prepares every module for the session and compiles the
// render plan. It must be called again when the rate or block size
// changes.
func (g *Graph) PrepareToPlay(sampleRate float64, blockSize int) error {
	cfg := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: blockSize}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("graph: prepare: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.renderMu.Lock()
	defer g.renderMu.Unlock()

	g.plan = nil
	for _, n := range g.nodes {
		if err := n.Module.Prepare(sampleRate, blockSize); err != nil {
			g.prepared = false
			return fmt.Errorf("graph: prepare node %d (%s): %w", n.ID, n.Module.Name(), err)
		}
	}
	g.prepared = true
	g.sampleRate = sampleRate
	g.blockSize = blockSize
	g.plan = g.compile()
	return nil
}

// ReleaseResources stops rendering and releases every module.
func (g *Graph) ReleaseResources() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.renderMu.Lock()
	g.plan = nil
	g.renderMu.Unlock()

	for _, n := range g.nodes {
		n.Module.Release()
	}
	g.prepared = false
}

// SampleRate returns the prepared sample rate, or 0.
func (g *Graph) SampleRate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sampleRate
}

// BlockSize returns the prepared maximum block size, or 0.
func (g *Graph) BlockSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blockSize
}
