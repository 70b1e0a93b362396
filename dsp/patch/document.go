package patch

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
)

// Document is the interchange form of a graph.
type Document struct {
	Nodes       []NodeDoc       `json:"nodes"`
	Connections []ConnectionDoc `json:"connections"`
}

// NodeDoc describes one node. Params maps parameter ids to values:
// numbers for float and int parameters, the choice name for choices and
// bool for switches.
type NodeDoc struct {
	ID       int             `json:"id"`
	Type     string          `json:"type"`
	Params   map[string]any  `json:"params,omitempty"`
	Position *graph.Position `json:"position,omitempty"`
}

// ConnectionDoc describes one edge. MIDI edges carry graph.MIDIChannel
// in both port fields.
type ConnectionDoc struct {
	Src     int  `json:"src"`
	SrcPort int  `json:"srcPort"`
	Dst     int  `json:"dst"`
	DstPort int  `json:"dstPort"`
	IsMIDI  bool `json:"isMidi,omitempty"`
}

// Export describes g. Nodes are listed in insertion order with their
// graph ids; connections in insertion order.
func Export(g *graph.Graph) *Document {
	nodes, conns := g.Snapshot()

	doc := &Document{
		Nodes:       make([]NodeDoc, 0, len(nodes)),
		Connections: make([]ConnectionDoc, 0, len(conns)),
	}
	for _, n := range nodes {
		params := n.Module.Params().All()
		values := make(map[string]any, len(params))
		for _, p := range params {
			values[p.ID] = p.Exported()
		}
		pos := n.Position
		doc.Nodes = append(doc.Nodes, NodeDoc{
			ID:       int(n.ID),
			Type:     n.Module.Name(),
			Params:   values,
			Position: &pos,
		})
	}
	for _, c := range conns {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			Src:     int(c.Source.Node),
			SrcPort: c.Source.Channel,
			Dst:     int(c.Dest.Node),
			DstPort: c.Dest.Channel,
			IsMIDI:  c.IsMIDI(),
		})
	}
	return doc
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("patch: marshal: %w", err)
	}
	return data, nil
}

// Types returns the type name of every node, in document order.
func (d *Document) Types() []string {
	out := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = n.Type
	}
	return out
}
