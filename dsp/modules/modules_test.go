package modules

import (
	"math"
	"slices"
	"testing"

	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/envelope"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/shaper"
	"github.com/cwbudde/algo-modsynth/internal/testutil"
)

func TestDefaultRegistryNames(t *testing.T) {
	t.Parallel()

	want := []string{
		"Oscillator", "Filter", "VCA", "ADSR", "Sequencer", "LFO", "Distortion",
		"Delay", "Reverb", "MIDI Keyboard", "Audio Input", "Audio Output",
		"Midi Input", "Poly MIDI", "Poly Sequencer",
	}
	if got := DefaultRegistry().Names(); !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
}

func TestEveryModuleProcessesSilence(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, err := reg.Create(name)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if m.Name() != name {
				t.Fatalf("Name() = %q", m.Name())
			}
			prepare(t, m, testBlock)

			audio := newBlock(m, testBlock)
			events := midi.NewBuffer(midi.DefaultCapacity)
			for range 4 {
				m.Process(audio, events)
			}
			for ch := range audio {
				testutil.RequireFinite(t, audio[ch])
			}
			m.Release()
		})
	}
}

func TestParameterIDsUnique(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, name := range reg.Names() {
		m, _ := reg.Create(name)
		seen := map[string]bool{}
		for _, p := range m.Params().All() {
			if seen[p.ID] {
				t.Fatalf("%s: duplicate parameter %q", name, p.ID)
			}
			seen[p.ID] = true
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	src := NewFilter()
	setParam(t, src, "cutoff", 1234.0)
	setParam(t, src, "drive", 50.0)

	blob, err := src.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState: %v", err)
	}

	dst := NewFilter()
	if err := dst.UnmarshalState(blob); err != nil {
		t.Fatalf("UnmarshalState: %v", err)
	}
	if got := dst.Param("cutoff").Value(); got != 1234 {
		t.Fatalf("cutoff = %v, want 1234", got)
	}
	if got := dst.Param("drive").Value(); got != 10 {
		t.Fatalf("drive = %v, want clamped 10", got)
	}
}

func TestOscillatorNoteOnKeepsPhase(t *testing.T) {
	t.Parallel()

	o := NewOscillator()
	setParam(t, o, "frequency", 220.0)
	prepare(t, o, testBlock)

	audio := newBlock(o, testBlock)
	events := midi.NewBuffer(midi.DefaultCapacity)
	events.Add(midi.NoteOn(0, 69, 100, 100))
	o.Process(audio, events)

	out := audio[0]
	testutil.RequireInRange(t, out, -1.0001, 1.0001)
	if d := math.Abs(out[100] - out[99]); d > 0.1 {
		t.Fatalf("step at note-on = %v, phase was reset", d)
	}
	if got := o.Param("frequency").Value(); !core.NearlyEqual(got, 440, 1e-9) {
		t.Fatalf("frequency after note-on = %v, want 440", got)
	}
}

func TestOscillatorPitchCVOverrides(t *testing.T) {
	t.Parallel()

	o := NewOscillator()
	setParam(t, o, "frequency", 50.0)
	prepare(t, o, 4800)

	audio := newBlock(o, 4800)
	copy(audio[0], testutil.DC(1000, 4800))
	o.Process(audio, nil)

	// 100 ms of a 1 kHz sine crosses zero about 200 times.
	if n := testutil.CountSignChanges(audio[0]); n < 190 || n > 210 {
		t.Fatalf("sign changes = %d, want ~200", n)
	}
}

func TestCutoffFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, cv, amount, want float64
	}{
		{80, 0, 1, 80},
		{80, 1, 1, 80 * 16},
		{80, 1, 0.5, 80 * 4},
		{10000, 1, 1, 20000},
		{80, -10, 1, 20},
	}
	for _, tt := range tests {
		if got := CutoffFor(tt.base, tt.cv, tt.amount); !core.NearlyEqual(got, tt.want, 1e-9) {
			t.Errorf("CutoffFor(%v, %v, %v) = %v, want %v", tt.base, tt.cv, tt.amount, got, tt.want)
		}
	}
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestFilterCVOpensCutoff(t *testing.T) {
	t.Parallel()

	const n = 8192
	render := func(cv float64) float64 {
		f := NewFilter()
		setParam(t, f, "cutoff", 100.0)
		setParam(t, f, "resonance", 0.0)
		setParam(t, f, "drive", 1.0)
		prepare(t, f, n)
		audio := newBlock(f, n)
		copy(audio[0], testutil.DeterministicSine(5000, testRate, 0.5, n))
		copy(audio[1], testutil.DC(cv, n))
		f.Process(audio, nil)
		testutil.RequireFinite(t, audio[0])
		return rms(audio[0][n/2:])
	}

	closed, open := render(0), render(2)
	if open <= 4*closed {
		t.Fatalf("rms with CV %v not well above closed %v", open, closed)
	}
}

func TestVCASilentWithoutControl(t *testing.T) {
	t.Parallel()

	v := NewVCA()
	prepare(t, v, 64)
	audio := newBlock(v, 64)
	copy(audio[0], testutil.Ones(64))
	v.Process(audio, nil)
	if peak := testutil.Peak(audio[0]); peak != 0 {
		t.Fatalf("peak = %v, want silence", peak)
	}

	copy(audio[0], testutil.Ones(64))
	copy(audio[1], testutil.Ones(64))
	v.Process(audio, nil)
	testutil.RequireSliceNearlyEqual(t, audio[0], testutil.DC(0.5, 64), 1e-12)
}

func TestADSRFollowsMIDI(t *testing.T) {
	t.Parallel()

	a := NewADSR()
	setParam(t, a, "sustain", 0.5)
	prepare(t, a, 4800)

	audio := newBlock(a, 4800)
	events := midi.NewBuffer(midi.DefaultCapacity)
	events.Add(midi.NoteOn(0, 60, 100, 0))
	a.Process(audio, events)

	attack := int(0.05 * testRate)
	testutil.RequireNonDecreasing(t, audio[0][:attack/2])
	testutil.RequireInRange(t, audio[0], 0, 1)

	events.Clear()
	events.Add(midi.NoteOff(0, 60, 0))
	clear(audio[0])
	a.Process(audio, events)
	testutil.RequireNonIncreasing(t, audio[0])
	for a.Stage() != envelope.Idle {
		clear(audio[0])
		a.Process(audio, nil)
	}
	if got := audio[0][len(audio[0])-1]; got != 0 {
		t.Fatalf("level after release = %v, want 0", got)
	}
}

func TestADSRGateEdges(t *testing.T) {
	t.Parallel()

	a := NewADSR()
	setParam(t, a, "attack", 0.01)
	prepare(t, a, 2400)

	audio := newBlock(a, 2400)
	copy(audio[0], testutil.Gate(2400, 10, 2400))
	a.Process(audio, nil)
	if audio[0][9] != 0 || audio[0][11] <= 0 {
		t.Fatalf("gate edge not at sample 10: %v %v", audio[0][9], audio[0][11])
	}

	clear(audio[0])
	a.Process(audio, nil)
	if st := a.Stage(); st != envelope.Release && st != envelope.Idle {
		t.Fatalf("stage after gate fall = %v", a.Stage())
	}
}

func TestLFOShapes(t *testing.T) {
	t.Parallel()

	render := func(shape string, bipolar bool) []float64 {
		l := NewLFO()
		setParam(t, l, "mode", false)
		setParam(t, l, "rateHz", 10.0)
		setParam(t, l, "shape", shape)
		setParam(t, l, "bipolar", bipolar)
		prepare(t, l, 4800)
		audio := newBlock(l, 4800)
		l.Process(audio, nil)
		testutil.RequireSliceNearlyEqual(t, audio[1], audio[0], 0)
		return audio[0]
	}

	sine := render("Sine", true)
	if slices.Max(sine) < 0.9 || slices.Min(sine) > -0.9 {
		t.Fatalf("sine span [%v, %v]", slices.Min(sine), slices.Max(sine))
	}
	testutil.RequireInRange(t, render("Triangle", false), 0, 1)
	testutil.RequireInRange(t, render("sawtooth", true), -1, 1)
}

func TestLFOSyncRate(t *testing.T) {
	t.Parallel()

	l := NewLFO()
	if got := l.Rate(); got != 2 {
		t.Fatalf("default synced rate = %v, want 2 Hz", got)
	}
	setParam(t, l, "rateSync", "1/1")
	if got := l.Rate(); got != 0.5 {
		t.Fatalf("1/1 rate = %v, want 0.5 Hz", got)
	}
}

func TestLFORetrigger(t *testing.T) {
	t.Parallel()

	l := NewLFO()
	setParam(t, l, "retrig", true)
	prepare(t, l, 100)
	audio := newBlock(l, 100)
	l.Process(audio, nil)

	events := midi.NewBuffer(midi.DefaultCapacity)
	events.Add(midi.NoteOn(0, 60, 100, 0))
	l.Process(audio, events)
	if math.Abs(audio[0][0]) > 1e-12 {
		t.Fatalf("first sample after retrigger = %v, want 0", audio[0][0])
	}
}

func TestLFOSampleAndHoldHolds(t *testing.T) {
	t.Parallel()

	l := NewLFO()
	setParam(t, l, "shape", "S&H")
	setParam(t, l, "mode", false)
	setParam(t, l, "rateHz", 1.0)
	prepare(t, l, 64)
	audio := newBlock(l, 64)
	l.Process(audio, nil)
	if audio[0][0] != audio[0][1] {
		t.Fatalf("held value changed: %v != %v", audio[0][0], audio[0][1])
	}
}

func TestDelayImpulseReappears(t *testing.T) {
	t.Parallel()

	const (
		n     = 480
		block = 2048
	)
	d := NewDelay()
	setParam(t, d, "time", 1000*n/testRate)
	setParam(t, d, "feedback", 0.5)
	setParam(t, d, "mix", 1.0)
	prepare(t, d, block)

	audio := newBlock(d, block)
	audio[0][0], audio[1][0] = 1, 1
	d.Process(audio, nil)

	for ch := range 2 {
		out := audio[ch]
		if !core.NearlyEqual(out[n], 1, 1e-9) {
			t.Fatalf("ch%d first echo at %d = %v, want 1", ch, n, out[n])
		}
		if !core.NearlyEqual(out[2*n], 0.5, 1e-9) {
			t.Fatalf("ch%d second echo at %d = %v, want 0.5", ch, 2*n, out[2*n])
		}
		for i, v := range out {
			if (i == 0 || i%n != 0) && math.Abs(v) > 1e-9 {
				t.Fatalf("ch%d unexpected output %v at %d", ch, v, i)
			}
		}
	}
}

func TestDelayBufferLen(t *testing.T) {
	t.Parallel()

	if got := BufferLen(44100, 512); got != 44100+512 {
		t.Fatalf("BufferLen = %d", got)
	}
}

func TestDistortionBounded(t *testing.T) {
	t.Parallel()

	for _, oversample := range []bool{true, false} {
		d := NewDistortion()
		setParam(t, d, "drive", 10.0)
		setParam(t, d, "mix", 1.0)
		setParam(t, d, "oversample", oversample)
		prepare(t, d, 4800)
		audio := newBlock(d, 4800)
		copy(audio[0], testutil.DeterministicSine(220, testRate, 1, 4800))
		copy(audio[1], audio[0])
		d.Process(audio, nil)
		testutil.RequireFinite(t, audio[0])
		if peak := testutil.Peak(audio[0]); peak > 1.2 || peak < 0.5 {
			t.Fatalf("oversample=%v peak = %v", oversample, peak)
		}
	}
}

func TestReverbTail(t *testing.T) {
	t.Parallel()

	r := NewReverb()
	prepare(t, r, 8192)
	audio := newBlock(r, 8192)
	audio[0][0], audio[1][0] = 1, 1
	r.Process(audio, nil)
	testutil.RequireFinite(t, audio[0])
	if rms(audio[0][4096:]) == 0 {
		t.Fatal("reverb produced no tail")
	}
}

func TestKeyboardTransposes(t *testing.T) {
	t.Parallel()

	k := NewKeyboard()
	setParam(t, k, "octave", 1)
	prepare(t, k, 64)
	if !k.NoteOn(60, 0) || !k.NoteOff(60) {
		t.Fatal("queue rejected events")
	}
	if k.NoteOn(200, 100) {
		t.Fatal("out of range note accepted")
	}

	got := runMIDI(k, 2, 64)
	if len(got) != 2 {
		t.Fatalf("events = %v", got)
	}
	if !got[0].e.IsNoteOn() || got[0].e.Note() != 72 || got[0].e.Velocity() != keyboardVelocity {
		t.Fatalf("first event = %v", got[0].e)
	}
	if !got[1].e.IsNoteOff() || got[1].e.Note() != 72 {
		t.Fatalf("second event = %v", got[1].e)
	}
}

func TestMIDIInputDecodesMessages(t *testing.T) {
	t.Parallel()

	m := NewMIDIInput()
	if module.RoleOf(m) != module.RoleMIDIInput {
		t.Fatal("wrong role")
	}
	if !m.Push(midi.NoteOn(0, 64, 90, 0).Message()) {
		t.Fatal("note-on rejected")
	}
	got := runMIDI(m, 1, 32)
	if len(got) != 1 || got[0].e.Note() != 64 || got[0].e.Velocity() != 90 {
		t.Fatalf("events = %v", got)
	}
}

func TestDistortionDryAlignedWithOversampledWet(t *testing.T) {
	t.Parallel()

	const n = 4800
	in := testutil.DeterministicSine(200, testRate, 0.5, n)

	run := func(mix float64) []float64 {
		d := NewDistortion()
		setParam(t, d, "drive", 1.0)
		setParam(t, d, "mix", mix)
		setParam(t, d, "oversample", true)
		prepare(t, d, n)
		audio := newBlock(d, n)
		copy(audio[0], in)
		copy(audio[1], in)
		d.Process(audio, nil)
		return audio[0]
	}
	dry := run(0)
	wet := run(1)
	half := run(0.5)

	o, err := shaper.NewOversampler2x(testRate)
	if err != nil {
		t.Fatalf("NewOversampler2x: %v", err)
	}
	latency := o.Latency()

	for i := n / 2; i < n; i++ {
		want := 0.5 * math.Sin(2*math.Pi*200*(float64(i)-latency)/testRate)
		if math.Abs(dry[i]-want) > 1e-3 {
			t.Fatalf("dry sample %d = %v, want input delayed by %v: %v", i, dry[i], latency, want)
		}
		if mid := 0.5 * (dry[i] + wet[i]); math.Abs(half[i]-mid) > 1e-9 {
			t.Fatalf("half mix sample %d = %v, want %v", i, half[i], mid)
		}
	}
}
