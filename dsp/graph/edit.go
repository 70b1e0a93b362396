package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// Editor batches topology changes. It is only valid inside the function
// passed to Graph.Edit.
type Editor struct {
	g       *Graph
	removed []module.Module
	changed bool
}

// Edit runs fn with exclusive access to the topology and installs the
// resulting render plan once fn returns, so the audio goroutine sees
// either none or all of the changes. Changes made before fn returns an
// error are kept.
func (g *Graph) Edit(fn func(*Editor) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e := &Editor{g: g}
	err := fn(e)
	if e.changed {
		g.install()
	}
	for _, m := range e.removed {
		m.Release()
	}
	return err
}

// install compiles a plan for the current topology and swaps it in.
func (g *Graph) install() {
	var p *plan
	if g.prepared {
		p = g.compile()
	}
	g.renderMu.Lock()
	g.plan = p
	g.renderMu.Unlock()
}

// AddNode adds m at pos and returns its identifier.
func (e *Editor) AddNode(m module.Module, pos Position) (NodeID, error) {
	if m == nil {
		return 0, errors.New("graph: nil module")
	}
	g := e.g
	if g.prepared {
		if err := m.Prepare(g.sampleRate, g.blockSize); err != nil {
			return 0, fmt.Errorf("graph: prepare %s: %w", m.Name(), err)
		}
	}

	id := g.nextID
	g.nextID++
	n := &Node{ID: id, Module: m, Position: pos}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n
	e.changed = true
	return id, nil
}

// RemoveNode removes a node and its connections. Unknown ids are ignored.
func (e *Editor) RemoveNode(id NodeID) {
	g := e.g
	n := g.byID[id]
	if n == nil {
		return
	}
	delete(g.byID, id)
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x.ID == id })
	g.conns = slices.DeleteFunc(g.conns, func(c Connection) bool {
		return c.Source.Node == id || c.Dest.Node == id
	})
	e.removed = append(e.removed, n.Module)
	e.changed = true
}

// AddConnection validates and adds c.
func (e *Editor) AddConnection(c Connection) error {
	if err := e.g.validate(c); err != nil {
		return err
	}
	e.g.conns = append(e.g.conns, c)
	e.changed = true
	return nil
}

// RemoveConnection removes an exact match of c.
func (e *Editor) RemoveConnection(c Connection) bool {
	g := e.g
	i := slices.Index(g.conns, c)
	if i < 0 {
		return false
	}
	g.conns = slices.Delete(g.conns, i, i+1)
	e.changed = true
	return true
}

// SetPosition updates a node's layout.
func (e *Editor) SetPosition(id NodeID, pos Position) error {
	n := e.g.byID[id]
	if n == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	n.Position = pos
	return nil
}

// Clear removes every node and connection.
func (e *Editor) Clear() {
	g := e.g
	for _, n := range g.nodes {
		e.removed = append(e.removed, n.Module)
	}
	g.nodes = nil
	g.conns = nil
	clear(g.byID)
	e.changed = true
}

// Nodes returns a snapshot of the nodes in insertion order.
func (e *Editor) Nodes() []Node { return e.g.snapshotNodes() }

// Connections returns a snapshot of the connections.
func (e *Editor) Connections() []Connection { return slices.Clone(e.g.conns) }

// Module returns the module of node id, or nil.
func (e *Editor) Module(id NodeID) module.Module {
	if n := e.g.byID[id]; n != nil {
		return n.Module
	}
	return nil
}

// Len returns the number of nodes.
func (e *Editor) Len() int { return len(e.g.nodes) }

func (g *Graph) validate(c Connection) error {
	src := g.byID[c.Source.Node]
	if src == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, c.Source.Node)
	}
	dst := g.byID[c.Dest.Node]
	if dst == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, c.Dest.Node)
	}

	if c.Source.IsMIDI() != c.Dest.IsMIDI() {
		return fmt.Errorf("%w: %s", ErrKindMismatch, c)
	}

	if c.IsMIDI() {
		if !src.Module.ProducesMIDI() {
			return fmt.Errorf("%w: %s has no MIDI output", ErrDirection, src.Module.Name())
		}
		if !dst.Module.AcceptsMIDI() {
			return fmt.Errorf("%w: %s has no MIDI input", ErrDirection, dst.Module.Name())
		}
	} else {
		if c.Source.Channel < 0 || c.Source.Channel >= src.Module.NumOutputs() {
			return fmt.Errorf("%w: %s output %d", ErrChannelRange, src.Module.Name(), c.Source.Channel)
		}
		if c.Dest.Channel < 0 || c.Dest.Channel >= dst.Module.NumInputs() {
			return fmt.Errorf("%w: %s input %d", ErrChannelRange, dst.Module.Name(), c.Dest.Channel)
		}
	}

	if slices.Contains(g.conns, c) {
		return fmt.Errorf("%w: %s", ErrDuplicate, c)
	}

	if c.Source.Node == c.Dest.Node || g.reaches(c.Dest.Node, c.Source.Node) {
		return fmt.Errorf("%w: %s", ErrCycle, c)
	}
	return nil
}
