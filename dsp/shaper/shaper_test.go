package shaper

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-modsynth/internal/testutil"
)

func TestSaturate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x, drive, want float64
	}{
		{x: 0, drive: 5, want: 0},
		{x: 1, drive: 1, want: 0.5},
		{x: -1, drive: 1, want: -0.5},
		{x: 0.5, drive: 4, want: 2.0 / 3.0},
	}
	for _, tt := range tests {
		if got := Saturate(tt.x, tt.drive); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("Saturate(%v, %v) = %v, want %v", tt.x, tt.drive, got, tt.want)
		}
	}

	if got := Saturate(1e9, 10); got >= 1 {
		t.Fatalf("Saturate is not bounded: %v", got)
	}
}

func TestOversamplerPassesLowFrequencies(t *testing.T) {
	t.Parallel()

	o, err := NewOversampler2x(48000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := testutil.DeterministicSine(200, 48000, 0.5, 4800)
	out := make([]float64, len(in))
	identity := func(x float64) float64 { return x }
	for i, x := range in {
		out[i] = o.ProcessSample(x, identity)
	}

	// Ignore the filter settling time.
	if peak := testutil.Peak(out[2400:]); math.Abs(peak-0.5) > 0.02 {
		t.Fatalf("passband peak = %v, want about 0.5", peak)
	}
}

func TestOversampledShapingStaysBounded(t *testing.T) {
	t.Parallel()

	o, err := NewOversampler2x(48000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := testutil.DeterministicSine(7000, 48000, 0.9, 4800)
	shaped := func(x float64) float64 { return Saturate(x, 10) }
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = o.ProcessSample(x, shaped)
	}

	testutil.RequireFinite(t, out)
	if peak := testutil.Peak(out); peak >= 1.5 || peak < 0.5 {
		t.Fatalf("oversampled output peak = %v, want within [0.5, 1.5)", peak)
	}

	o.Reset()
	if got := o.ProcessSample(0, shaped); got != 0 {
		t.Fatalf("output after reset = %v, want 0", got)
	}
}

func TestNewOversamplerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewOversampler2x(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestOversamplerLatency(t *testing.T) {
	t.Parallel()

	o, err := NewOversampler2x(48000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	latency := o.Latency()
	if latency < 0.5 || latency > 2 {
		t.Fatalf("latency = %v samples, want about one", latency)
	}

	const freq = 200.0
	identity := func(x float64) float64 { return x }
	for i := range 4800 {
		y := o.ProcessSample(0.5*math.Sin(2*math.Pi*freq*float64(i)/48000), identity)
		if i < 2400 {
			continue
		}
		want := 0.5 * math.Sin(2*math.Pi*freq*(float64(i)-latency)/48000)
		if math.Abs(y-want) > 0.005 {
			t.Fatalf("sample %d = %v, want %v (input delayed by %v)", i, y, want, latency)
		}
	}
}
