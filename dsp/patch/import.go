package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// Stage is the last state an import reached.
type Stage int

const (
	StageReceived Stage = iota
	StageValidated
	StageCleared
	StageNodesCreated
	StageConnectionsApplied
	StageDone
	StageRejected
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageValidated:
		return "validated"
	case StageCleared:
		return "cleared"
	case StageNodesCreated:
		return "nodes created"
	case StageConnectionsApplied:
		return "connections applied"
	case StageDone:
		return "done"
	case StageRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result summarizes an import.
type Result struct {
	Stage              Stage `json:"stage"`
	NodesCreated       int   `json:"nodesCreated"`
	NodesSkipped       int   `json:"nodesSkipped"`
	ConnectionsApplied int   `json:"connectionsApplied"`
	ConnectionsSkipped int   `json:"connectionsSkipped"`
	// IDs maps document node ids to the ids assigned by the graph.
	IDs map[int]graph.NodeID `json:"ids"`
	// Diagnostics lists every skipped element and rejected value.
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func (r *Result) diag(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// Import applies the JSON document raw to g, creating modules through
// reg. With clearExisting the graph is emptied first, otherwise the
// document is merged into it. A document of the wrong shape returns an
// error wrapping ErrInvalidDocument and leaves g unchanged; everything
// else is best effort and reported in the result.
func Import(raw []byte, g *graph.Graph, reg *module.Registry, clearExisting bool) (*Result, error) {
	res := &Result{Stage: StageReceived, IDs: make(map[int]graph.NodeID)}

	doc, err := parse(raw)
	if err != nil {
		res.Stage = StageRejected
		return res, err
	}
	res.Stage = StageValidated

	nodes := make([]NodeDoc, 0, len(doc.nodes))
	for i, elem := range doc.nodes {
		var n NodeDoc
		if err := decodeElement(elem, &n); err != nil {
			res.NodesSkipped++
			res.diag("node %d: %v", i, err)
			continue
		}
		nodes = append(nodes, n)
	}
	conns := make([]ConnectionDoc, 0, len(doc.connections))
	for i, elem := range doc.connections {
		var c ConnectionDoc
		if err := decodeElement(elem, &c); err != nil {
			res.ConnectionsSkipped++
			res.diag("connection %d: %v", i, err)
			continue
		}
		conns = append(conns, c)
	}

	return res, apply(res, nodes, conns, g, reg, clearExisting)
}

// ImportDocument applies an already decoded document. It behaves like
// Import.
func ImportDocument(doc *Document, g *graph.Graph, reg *module.Registry, clearExisting bool) (*Result, error) {
	res := &Result{Stage: StageReceived, IDs: make(map[int]graph.NodeID)}
	if doc == nil {
		res.Stage = StageRejected
		return res, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	res.Stage = StageValidated
	return res, apply(res, doc.Nodes, doc.Connections, g, reg, clearExisting)
}

func decodeElement(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

type pendingNode struct {
	doc NodeDoc
	mod module.Module
}

func apply(res *Result, nodes []NodeDoc, conns []ConnectionDoc, g *graph.Graph, reg *module.Registry, clearExisting bool) error {
	// Modules are built and configured before the topology lock is taken.
	pending := make([]pendingNode, 0, len(nodes))
	for _, n := range nodes {
		m, err := reg.Create(n.Type)
		if err != nil {
			res.NodesSkipped++
			res.diag("node %d: %v", n.ID, err)
			continue
		}
		applyParams(res, n, m)
		pending = append(pending, pendingNode{doc: n, mod: m})
	}

	err := g.Edit(func(e *graph.Editor) error {
		if clearExisting {
			e.Clear()
			res.Stage = StageCleared
		}

		for _, p := range pending {
			var pos graph.Position
			if p.doc.Position != nil {
				pos = *p.doc.Position
			}
			id, err := e.AddNode(p.mod, pos)
			if err != nil {
				res.NodesSkipped++
				res.diag("node %d: %v", p.doc.ID, err)
				continue
			}
			if _, dup := res.IDs[p.doc.ID]; dup {
				res.diag("node %d: duplicate id, connections use the last node", p.doc.ID)
			}
			res.IDs[p.doc.ID] = id
			res.NodesCreated++
		}
		res.Stage = StageNodesCreated

		for _, c := range conns {
			src, okSrc := res.IDs[c.Src]
			dst, okDst := res.IDs[c.Dst]
			if !okSrc || !okDst {
				res.ConnectionsSkipped++
				res.diag("connection %d:%d -> %d:%d: endpoint not created", c.Src, c.SrcPort, c.Dst, c.DstPort)
				continue
			}
			conn := graph.Connection{
				Source: graph.Endpoint{Node: src, Channel: c.SrcPort},
				Dest:   graph.Endpoint{Node: dst, Channel: c.DstPort},
			}
			if c.IsMIDI {
				conn.Source.Channel = graph.MIDIChannel
				conn.Dest.Channel = graph.MIDIChannel
			}
			if err := e.AddConnection(conn); err != nil {
				res.ConnectionsSkipped++
				res.diag("connection %d:%d -> %d:%d: %v", c.Src, c.SrcPort, c.Dst, c.DstPort, err)
				continue
			}
			res.ConnectionsApplied++
		}
		res.Stage = StageConnectionsApplied
		return nil
	})
	if err != nil {
		return err
	}
	res.Stage = StageDone
	return nil
}

// applyParams writes the document's values into m. Missing values keep
// the module defaults; unusable values are reported and skipped.
func applyParams(res *Result, n NodeDoc, m module.Module) {
	for _, p := range m.Params().All() {
		v, ok := n.Params[p.ID]
		if !ok {
			continue
		}
		if err := module.ApplyValue(p, v); err != nil {
			res.diag("node %d: %v", n.ID, err)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(n.Params)) {
		if m.Params().Get(id) == nil {
			res.diag("node %d: %s has no parameter %q", n.ID, n.Type, id)
		}
	}
}
