package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/module"
)

// ParamSchema describes one parameter. Min and Max are set for numeric
// parameters, Choices for enumerations.
type ParamSchema struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Default any      `json:"default"`
}

// ModuleSchema describes one registered module type.
type ModuleSchema struct {
	Type    string        `json:"type"`
	Inputs  int           `json:"inputs"`
	Outputs int           `json:"outputs"`
	MIDIIn  bool          `json:"midiIn"`
	MIDIOut bool          `json:"midiOut"`
	Params  []ParamSchema `json:"params"`
}

// Schema describes every type in reg, in registration order. Each type
// is instantiated once to read its ports and parameters.
func Schema(reg *module.Registry) []ModuleSchema {
	names := reg.Names()
	out := make([]ModuleSchema, 0, len(names))
	for _, name := range names {
		m, err := reg.Create(name)
		if err != nil {
			continue
		}
		ms := ModuleSchema{
			Type:    name,
			Inputs:  m.NumInputs(),
			Outputs: m.NumOutputs(),
			MIDIIn:  m.AcceptsMIDI(),
			MIDIOut: m.ProducesMIDI(),
		}
		for _, p := range m.Params().All() {
			ms.Params = append(ms.Params, paramSchema(p))
		}
		out = append(out, ms)
	}
	return out
}

func paramSchema(p *module.Param) ParamSchema {
	ps := ParamSchema{ID: p.ID, Name: p.Name, Kind: p.Kind.String(), Default: defaultValue(p)}
	switch p.Kind {
	case module.KindChoice:
		ps.Choices = append([]string(nil), p.Choices...)
	case module.KindFloat, module.KindInt:
		lo, hi := p.Min, p.Max
		ps.Min, ps.Max = &lo, &hi
	}
	return ps
}

// defaultValue returns the default in the representation export uses.
func defaultValue(p *module.Param) any {
	switch p.Kind {
	case module.KindInt:
		return int(p.Default)
	case module.KindChoice:
		i := int(p.Default)
		if i >= 0 && i < len(p.Choices) {
			return p.Choices[i]
		}
		return ""
	case module.KindBool:
		return p.Default >= 0.5
	default:
		return p.Default
	}
}

// SchemaMarkdown renders the schema as markdown tables, one per module
// type, for inclusion in an assistant prompt.
func SchemaMarkdown(reg *module.Registry) string {
	var b strings.Builder
	b.WriteString("### Available Modules and Parameters\n\n")
	fmt.Fprintf(&b, "MIDI connections use port %d on both ends.\n\n", graph.MIDIChannel)

	for _, ms := range Schema(reg) {
		fmt.Fprintf(&b, "#### %s\n\n", ms.Type)
		fmt.Fprintf(&b, "Ports: %d audio in, %d audio out", ms.Inputs, ms.Outputs)
		if ms.MIDIIn {
			b.WriteString(", MIDI in")
		}
		if ms.MIDIOut {
			b.WriteString(", MIDI out")
		}
		b.WriteString("\n\n")

		if len(ms.Params) == 0 {
			b.WriteString("No parameters.\n\n")
			continue
		}
		b.WriteString("| Parameter ID | Name | Range / Options | Default |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, ps := range ms.Params {
			fmt.Fprintf(&b, "| %s | %s | %s | %v |\n", ps.ID, ps.Name, rangeText(ps), ps.Default)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func rangeText(ps ParamSchema) string {
	switch {
	case ps.Choices != nil:
		return "Choice: [" + strings.Join(ps.Choices, ", ") + "]"
	case ps.Kind == module.KindBool.String():
		return "Boolean (0 or 1)"
	case ps.Min != nil && ps.Max != nil:
		return formatFloat(*ps.Min) + " to " + formatFloat(*ps.Max)
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// DocumentSchema returns a JSON Schema for patch documents whose node
// types are restricted to the types in reg.
func DocumentSchema(reg *module.Registry) map[string]any {
	names := reg.Names()
	types := make([]any, len(names))
	for i, n := range names {
		types[i] = n
	}

	node := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":   map[string]any{"type": "integer"},
			"type": map[string]any{"type": "string", "enum": types},
			"params": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": []any{"number", "string", "boolean"},
				},
			},
			"position": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"x": map[string]any{"type": "number"},
					"y": map[string]any{"type": "number"},
				},
			},
		},
		"required": []any{"id", "type"},
	}
	conn := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"src":     map[string]any{"type": "integer"},
			"srcPort": map[string]any{"type": "integer"},
			"dst":     map[string]any{"type": "integer"},
			"dstPort": map[string]any{"type": "integer"},
			"isMidi":  map[string]any{"type": "boolean"},
		},
		"required": []any{"src", "srcPort", "dst", "dstPort"},
	}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"nodes":       map[string]any{"type": "array", "items": node},
			"connections": map[string]any{"type": "array", "items": conn},
		},
		"required": []any{"nodes", "connections"},
	}
}
