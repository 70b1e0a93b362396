package module

import (
	"errors"
	"testing"
)

func TestConstrainPerKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		param *Param
		in    float64
		want  float64
	}{
		{name: "float above", param: Float("cutoff", "Cutoff", 20, 20000, 80), in: 99999, want: 20000},
		{name: "float below", param: Float("cutoff", "Cutoff", 20, 20000, 80), in: 1, want: 20},
		{name: "int snaps", param: Int("octave", "Octave", -2, 2, 0), in: 1.6, want: 2},
		{name: "choice snaps", param: Choice("wave", "Wave", []string{"A", "B", "C"}, 0), in: 1.4, want: 1},
		{name: "choice clamps", param: Choice("wave", "Wave", []string{"A", "B", "C"}, 0), in: 12, want: 2},
		{name: "bool threshold", param: Bool("run", "Run", false), in: 0.7, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.param.Set(tt.in); got != tt.want {
				t.Fatalf("Set(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got := tt.param.Value(); got != tt.want {
				t.Fatalf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampIsIdempotent(t *testing.T) {
	t.Parallel()

	p := Float("time", "Time", 1, 1000, 250)
	first := p.Set(5000)
	second := p.Set(first)
	if first != second || second != 1000 {
		t.Fatalf("clamping not idempotent: %v then %v", first, second)
	}
}

func TestChoiceLookup(t *testing.T) {
	t.Parallel()

	p := Choice("shape", "Shape", []string{"Sine", "S&H", "sine"}, 0)

	if i, ok := p.ChoiceIndex("sine"); !ok || i != 2 {
		t.Fatalf("exact match = %d/%v, want 2/true", i, ok)
	}
	if i, ok := p.ChoiceIndex("s&h"); !ok || i != 1 {
		t.Fatalf("case-insensitive match = %d/%v, want 1/true", i, ok)
	}
	if _, ok := p.ChoiceIndex("Square"); ok {
		t.Fatal("expected no match")
	}

	p.Set(1)
	if p.ChoiceName() != "S&H" || p.Exported() != "S&H" {
		t.Fatalf("ChoiceName = %q, Exported = %v", p.ChoiceName(), p.Exported())
	}
}

func TestApplyValue(t *testing.T) {
	t.Parallel()

	wave := Choice("waveform", "Waveform", []string{"Sine", "Square", "Saw", "Triangle"}, 0)
	freq := Float("frequency", "Frequency", 20, 20000, 440)
	run := Bool("run", "Run", false)
	oct := Int("octave", "Octave", -2, 2, 0)

	steps := []struct {
		p    *Param
		v    any
		want float64
	}{
		{p: wave, v: "saw", want: 2},
		{p: wave, v: 3.0, want: 3},
		{p: wave, v: "1", want: 1},
		{p: freq, v: 99999.0, want: 20000},
		{p: freq, v: "1000", want: 1000},
		{p: run, v: true, want: 1},
		{p: run, v: "off", want: 0},
		{p: run, v: 2.0, want: 1},
		{p: oct, v: -7, want: -2},
	}
	for _, s := range steps {
		if err := ApplyValue(s.p, s.v); err != nil {
			t.Fatalf("ApplyValue(%s, %v) error: %v", s.p.ID, s.v, err)
		}
		if got := s.p.Value(); got != s.want {
			t.Fatalf("ApplyValue(%s, %v) -> %v, want %v", s.p.ID, s.v, got, s.want)
		}
	}

	for _, bad := range []any{"Pulse", nil, []any{1}} {
		if err := ApplyValue(wave, bad); !errors.Is(err, ErrBadValue) {
			t.Fatalf("ApplyValue(%v) = %v, want ErrBadValue", bad, err)
		}
	}
	if wave.Value() != 1 {
		t.Fatalf("failed apply changed the value to %v", wave.Value())
	}
}

func TestParseValueDoesNotStore(t *testing.T) {
	t.Parallel()

	freq := Float("frequency", "Frequency", 20, 20000, 440)
	got, err := ParseValue(freq, "99999")
	if err != nil {
		t.Fatalf("ParseValue error: %v", err)
	}
	if got != 20000 {
		t.Fatalf("ParseValue = %v, want 20000", got)
	}
	if freq.Value() != 440 {
		t.Fatalf("ParseValue stored %v", freq.Value())
	}

	if _, err := ParseValue(freq, "fast"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("ParseValue(fast) = %v, want ErrBadValue", err)
	}
}

func TestExportedTypes(t *testing.T) {
	t.Parallel()

	if _, ok := Float("a", "A", 0, 1, 0.5).Exported().(float64); !ok {
		t.Fatal("float should export float64")
	}
	if _, ok := Int("b", "B", 0, 10, 3).Exported().(int); !ok {
		t.Fatal("int should export int")
	}
	if _, ok := Bool("c", "C", true).Exported().(bool); !ok {
		t.Fatal("bool should export bool")
	}
}

func TestParamSetDuplicatePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for duplicate id")
		}
	}()
	NewParamSet(Float("x", "X", 0, 1, 0), Float("x", "X", 0, 1, 0))
}
