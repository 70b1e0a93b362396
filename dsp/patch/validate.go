package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned for documents of the wrong shape.
var ErrInvalidDocument = errors.New("patch: invalid document")

// rawDocument holds the top level of a document whose shape has been
// checked. Elements are decoded one by one during import.
type rawDocument struct {
	nodes       []json.RawMessage
	connections []json.RawMessage
}

// Validate reports whether raw is a structurally valid document: a JSON
// object with a "nodes" array and, if present, a "connections" array.
// Node and connection elements are not inspected.
func Validate(raw []byte) error {
	_, err := parse(raw)
	return err
}

func parse(raw []byte) (*rawDocument, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: root is not an object", ErrInvalidDocument)
	}

	nodes, ok := root["nodes"]
	if !ok {
		return nil, fmt.Errorf("%w: missing nodes", ErrInvalidDocument)
	}
	doc := &rawDocument{}
	if !isArray(nodes) {
		return nil, fmt.Errorf("%w: nodes is not an array", ErrInvalidDocument)
	}
	if err := json.Unmarshal(nodes, &doc.nodes); err != nil {
		return nil, fmt.Errorf("%w: nodes: %w", ErrInvalidDocument, err)
	}

	if conns, ok := root["connections"]; ok && !isNull(conns) {
		if !isArray(conns) {
			return nil, fmt.Errorf("%w: connections is not an array", ErrInvalidDocument)
		}
		if err := json.Unmarshal(conns, &doc.connections); err != nil {
			return nil, fmt.Errorf("%w: connections: %w", ErrInvalidDocument, err)
		}
	}
	return doc, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
