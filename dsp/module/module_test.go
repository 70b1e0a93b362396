package module

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-modsynth/dsp/core"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
)

type gainModule struct {
	Base
}

func newGainModule() *gainModule {
	return &gainModule{Base: NewBase(
		Ports{Name: "Gain", Inputs: 1, Outputs: 1},
		Float("gain", "Gain", 0, 2, 1),
		Choice("mode", "Mode", []string{"Linear", "Squared"}, 0),
		Bool("mute", "Mute", false),
	)}
}

func (g *gainModule) Process(audio [][]float64, _ *midi.Buffer) {
	gain := g.Param("gain").Value()
	for i := range audio[0] {
		audio[0][i] *= gain
	}
}

var _ Module = (*gainModule)(nil)

type inputModule struct {
	gainModule
}

func (inputModule) Role() Role { return RoleAudioInput }

func TestBasePrepareValidates(t *testing.T) {
	t.Parallel()

	m := newGainModule()
	if err := m.Prepare(0, 64); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("Prepare(0, 64) = %v, want ErrInvalidConfig", err)
	}
	if m.Prepared() {
		t.Fatal("module prepared after failed Prepare")
	}

	if err := m.Prepare(48000, 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Prepared() || m.SampleRate() != 48000 || m.MaxBlockSize() != 64 {
		t.Fatalf("unexpected session %v/%d", m.SampleRate(), m.MaxBlockSize())
	}
	m.Release()
	if m.Prepared() {
		t.Fatal("module still prepared after Release")
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	src := newGainModule()
	src.Param("gain").Set(1.5)
	src.Param("mode").Set(1)
	src.Param("mute").SetBool(true)

	blob, err := src.MarshalState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dst := newGainModule()
	if err := dst.UnmarshalState(blob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range src.Params().All() {
		if got := dst.Param(p.ID).Value(); got != p.Value() {
			t.Fatalf("%s = %v, want %v", p.ID, got, p.Value())
		}
	}

	if err := dst.UnmarshalState([]byte(`{"gain": 7, "unknown": 1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Param("gain").Value() != 2 {
		t.Fatalf("gain = %v, want clamped 2", dst.Param("gain").Value())
	}
	if err := dst.UnmarshalState([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed blob")
	}
}

func TestRoleOf(t *testing.T) {
	t.Parallel()

	if RoleOf(newGainModule()) != RoleProcessor {
		t.Fatal("plain module should be a processor")
	}
	if RoleOf(&inputModule{gainModule: *newGainModule()}) != RoleAudioInput {
		t.Fatal("expected audio input role")
	}
	if Width(newGainModule()) != 1 {
		t.Fatal("unexpected width")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register("", func() Module { return newGainModule() }); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := r.Register("Gain", nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
	r.MustRegister("Gain", func() Module { return newGainModule() })
	r.MustRegister("Other", func() Module { return newGainModule() })
	if err := r.Register("Gain", func() Module { return newGainModule() }); !errors.Is(err, errDuplicateType) {
		t.Fatalf("duplicate register = %v, want errDuplicateType", err)
	}

	m, err := r.Create("Gain")
	if err != nil || m.Name() != "Gain" {
		t.Fatalf("Create = %v, %v", m, err)
	}
	if _, err := r.Create("gain"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("Create(gain) = %v, want ErrUnknownType", err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "Gain" || names[1] != "Other" {
		t.Fatalf("Names() = %v", names)
	}
}
