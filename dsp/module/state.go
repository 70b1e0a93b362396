package module

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadValue is returned when a value cannot be applied to a parameter.
var ErrBadValue = errors.New("bad parameter value")

// MarshalParams encodes the set as a JSON object keyed by parameter id.
func MarshalParams(s *ParamSet) ([]byte, error) {
	values := make(map[string]any, s.Len())
	for _, p := range s.All() {
		values[p.ID] = p.Exported()
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("module: marshal state: %w", err)
	}
	return data, nil
}

// UnmarshalParams applies a blob produced by MarshalParams. Unknown ids
// are ignored; values are clamped. An empty blob is a no-op.
func UnmarshalParams(s *ParamSet, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("module: unmarshal state: %w", err)
	}

	var errs []error
	for _, p := range s.All() {
		v, ok := values[p.ID]
		if !ok {
			continue
		}
		if err := ApplyValue(p, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyValue writes a loosely typed value into p. Numbers are clamped and
// snapped; choice parameters accept a choice name (exact, then
// case-insensitive) or a numeric index; booleans accept bool, numbers and
// "true"/"false"; numeric parameters accept numeric strings.
func ApplyValue(p *Param, v any) error {
	raw, err := ParseValue(p, v)
	if err != nil {
		return err
	}
	p.Set(raw)
	return nil
}

// ParseValue converts v the way ApplyValue does and returns the constrained
// value without storing it.
func ParseValue(p *Param, v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return parseNumber(p, x)
	case float32:
		return parseNumber(p, float64(x))
	case int:
		return parseNumber(p, float64(x))
	case int64:
		return parseNumber(p, float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrBadValue, p.ID, x.String())
		}
		return parseNumber(p, f)
	case bool:
		if p.Kind == KindChoice {
			return 0, fmt.Errorf("%w: %s=%v", ErrBadValue, p.ID, x)
		}
		return p.Constrain(boolValue(x)), nil
	case string:
		return parseString(p, x)
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", ErrBadValue, p.ID, v)
	}
}

func parseNumber(p *Param, f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%v", ErrBadValue, p.ID, f)
	}
	if p.Kind == KindBool {
		return boolValue(f != 0), nil
	}
	return p.Constrain(f), nil
}

func parseString(p *Param, s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch p.Kind {
	case KindChoice:
		if i, ok := p.ChoiceIndex(s); ok {
			return p.Constrain(float64(i)), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return parseNumber(p, f)
		}
	case KindBool:
		if b, err := strconv.ParseBool(s); err == nil {
			return boolValue(b), nil
		}
		switch strings.ToLower(s) {
		case "on", "yes":
			return boolValue(true), nil
		case "off", "no":
			return boolValue(false), nil
		}
	default:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return parseNumber(p, f)
		}
	}
	return 0, fmt.Errorf("%w: %s=%q", ErrBadValue, p.ID, s)
}
