// Package patch converts a processing graph to and from the JSON patch
// document, describes the registered module types as a schema for
// structured generation, and builds the default patch.
//
// A document has the form
//
//	{
//	  "nodes": [{"id": 1, "type": "Oscillator", "params": {"frequency": 440}, "position": {"x": 0, "y": 0}}],
//	  "connections": [{"src": 1, "srcPort": 0, "dst": 2, "dstPort": 0}]
//	}
//
// MIDI connections use graph.MIDIChannel as both ports. Import is
// best effort: unknown module types, bad parameter values and dangling
// or invalid connections are skipped with a diagnostic. Only a document
// of the wrong shape is rejected, and then the graph is not touched.
package patch
