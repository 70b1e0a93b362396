package module

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-modsynth/dsp/core"
)

// Kind is the value domain of a parameter.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindChoice
	KindBool
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindChoice:
		return "choice"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Param is one addressable control of a module. The identifier is stable
// and used in patch documents; the value is always kept inside the legal
// range. Choice values are stored as the choice index and booleans as 0/1.
type Param struct {
	ID      string
	Name    string
	Kind    Kind
	Min     float64
	Max     float64
	Default float64
	Choices []string
	// Smoothing is the ramp time the owning module applies to changes, in
	// seconds. Zero means changes apply immediately.
	Smoothing float64

	bits atomic.Uint64
}

// Float declares a continuous parameter.
func Float(id, name string, lo, hi, def float64) *Param {
	return newParam(&Param{ID: id, Name: name, Kind: KindFloat, Min: lo, Max: hi, Default: def})
}

// Int declares an integer parameter.
func Int(id, name string, lo, hi, def int) *Param {
	return newParam(&Param{ID: id, Name: name, Kind: KindInt, Min: float64(lo), Max: float64(hi), Default: float64(def)})
}

// Choice declares an enumerated parameter.
func Choice(id, name string, choices []string, def int) *Param {
	return newParam(&Param{
		ID: id, Name: name, Kind: KindChoice,
		Min: 0, Max: float64(max(len(choices)-1, 0)), Default: float64(def),
		Choices: choices,
	})
}

// Bool declares an on/off parameter.
func Bool(id, name string, def bool) *Param {
	return newParam(&Param{ID: id, Name: name, Kind: KindBool, Min: 0, Max: 1, Default: boolValue(def)})
}

func newParam(p *Param) *Param {
	p.Default = p.Constrain(p.Default)
	p.bits.Store(math.Float64bits(p.Default))
	return p
}

// WithSmoothing sets the ramp time and returns p.
func (p *Param) WithSmoothing(seconds float64) *Param {
	p.Smoothing = math.Max(0, seconds)
	return p
}

// Constrain clamps v into [Min, Max] and snaps it to the parameter's
// domain. NaN maps to the default.
func (p *Param) Constrain(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	v = core.Clamp(v, p.Min, p.Max)
	switch p.Kind {
	case KindInt, KindChoice:
		v = math.Round(v)
	case KindBool:
		v = boolValue(v >= 0.5)
	}
	return v
}

// Value returns the current value.
func (p *Param) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Set stores the constrained value and returns it.
func (p *Param) Set(v float64) float64 {
	v = p.Constrain(v)
	p.bits.Store(math.Float64bits(v))
	return v
}

// Reset restores the default.
func (p *Param) Reset() {
	p.bits.Store(math.Float64bits(p.Default))
}

// Int returns the value rounded to an integer.
func (p *Param) Int() int {
	return int(math.Round(p.Value()))
}

// Bool returns the value of a boolean parameter.
func (p *Param) Bool() bool {
	return p.Value() >= 0.5
}

// SetBool stores a boolean value.
func (p *Param) SetBool(b bool) {
	p.Set(boolValue(b))
}

// Index returns the selected choice index.
func (p *Param) Index() int {
	return p.Int()
}

// ChoiceName returns the selected choice, or "" for non-choice parameters.
func (p *Param) ChoiceName() string {
	i := p.Index()
	if p.Kind != KindChoice || i < 0 || i >= len(p.Choices) {
		return ""
	}
	return p.Choices[i]
}

// ChoiceIndex resolves name to a choice index, trying an exact match
// first and a case-insensitive match second.
func (p *Param) ChoiceIndex(name string) (int, bool) {
	for i, c := range p.Choices {
		if c == name {
			return i, true
		}
	}
	for i, c := range p.Choices {
		if strings.EqualFold(c, name) {
			return i, true
		}
	}
	return 0, false
}

// Normalized maps the value into [0, 1].
func (p *Param) Normalized() float64 {
	if p.Max == p.Min {
		return 0
	}
	return (p.Value() - p.Min) / (p.Max - p.Min)
}

// Exported returns the value in its natural representation: float64 for
// float parameters, int for integers, the choice string for choices and
// bool for booleans.
func (p *Param) Exported() any {
	switch p.Kind {
	case KindInt:
		return p.Int()
	case KindChoice:
		return p.ChoiceName()
	case KindBool:
		return p.Bool()
	default:
		return p.Value()
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
