package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/modules"
	"github.com/cwbudde/algo-modsynth/dsp/patch"
	"github.com/cwbudde/algo-modsynth/internal/assistant"
)

type stubProvider struct {
	reply string
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(context.Context, string, []assistant.Message) (string, error) {
	return p.reply, nil
}

func (p *stubProvider) Models(context.Context) ([]string, error) {
	return []string{"stub-1"}, nil
}

type fixture struct {
	graph  *graph.Graph
	router *gin.Engine
	svc    *assistant.Service
}

func newFixture(t *testing.T, provider assistant.Provider) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	g := graph.New()
	reg := modules.DefaultRegistry()
	_, err := patch.ImportDocument(patch.DefaultDocument(), g, reg, true)
	require.NoError(t, err)

	var svc *assistant.Service
	if provider != nil {
		svc = assistant.NewService(provider, g, reg, assistant.Options{})
		t.Cleanup(svc.Close)
	}
	return &fixture{graph: g, router: New(g, reg, svc, "test").Router(), svc: svc}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["assistant"])
	assert.InDelta(t, 12, body["nodes"], 0)
}

func TestPatchRoundTrip(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/patch", "")
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()

	var doc patch.Document
	decode(t, w, &doc)
	assert.Len(t, doc.Nodes, 12)

	w = f.do(t, http.MethodPut, "/api/patch", exported)
	require.Equal(t, http.StatusOK, w.Code)
	var res map[string]any
	decode(t, w, &res)
	assert.Equal(t, "done", res["stage"])
	assert.Equal(t, 12, f.graph.Len())

	w = f.do(t, http.MethodPut, "/api/patch?clear=false", `{"nodes":[{"id":1,"type":"VCA"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 13, f.graph.Len())
}

func TestPutPatchRejectsInvalid(t *testing.T) {
	f := newFixture(t, nil)
	for _, body := range []string{`[]`, `{"nodes": 1}`, `nope`} {
		w := f.do(t, http.MethodPut, "/api/patch", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	w := f.do(t, http.MethodPut, "/api/patch?clear=maybe", `{"nodes":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 12, f.graph.Len())
}

func TestSchemaRoutes(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Modules []patch.ModuleSchema `json:"modules"`
	}
	decode(t, w, &body)
	assert.Len(t, body.Modules, len(modules.DefaultRegistry().Names()))

	w = f.do(t, http.MethodGet, "/api/schema?format=markdown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#### Delay")

	w = f.do(t, http.MethodGet, "/api/modules", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Poly Sequencer")
}

func TestNodeAndConnectionEditing(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/nodes", `{"type":"LFO","params":{"shape":"Square"},"position":{"x":5,"y":6}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int `json:"id"`
	}
	decode(t, w, &created)
	id := graph.NodeID(created.ID)
	node, ok := f.graph.Node(id)
	require.True(t, ok)
	assert.Equal(t, graph.Position{X: 5, Y: 6}, node.Position)
	assert.Equal(t, "Square", node.Module.Params().Get("shape").ChoiceName())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/nodes", `{"type":"Bogus"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/nodes", `{"type":"LFO","params":{"nope":1}}`).Code)

	w = f.do(t, http.MethodPut, "/api/nodes/"+itoa(id)+"/params", `{"rateHz": 100}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rateHz":20`)

	// One bad value rejects the whole update.
	w = f.do(t, http.MethodPut, "/api/nodes/"+itoa(id)+"/params", `{"rateHz": 5, "shape": "Bogus"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	lfo, _ := f.graph.Node(id)
	assert.InDelta(t, 20, lfo.Module.Params().Get("rateHz").Value(), 0)
	assert.Equal(t, "Square", lfo.Module.Params().Get("shape").ChoiceName())

	w = f.do(t, http.MethodPut, "/api/nodes/"+itoa(id)+"/position", `{"x":1,"y":2}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	// LFO -> VCA gain input (default patch node 6).
	conn := `{"src":` + itoa(id) + `,"srcPort":0,"dst":6,"dstPort":1}`
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/connections", conn).Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/connections", conn).Code)
	assert.Equal(t, http.StatusNotFound,
		f.do(t, http.MethodPost, "/api/connections", `{"src":99,"srcPort":0,"dst":6,"dstPort":1}`).Code)
	// Reverb -> Oscillator would close a loop through the chain.
	assert.Equal(t, http.StatusUnprocessableEntity,
		f.do(t, http.MethodPost, "/api/connections", `{"src":12,"srcPort":0,"dst":4,"dstPort":0}`).Code)

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/connections", conn).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/connections", conn).Code)

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/nodes/"+itoa(id), "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/nodes/"+itoa(id), "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodDelete, "/api/nodes/x", "").Code)
}

func itoa(id graph.NodeID) string {
	b, _ := json.Marshal(int(id))
	return string(b)
}

func TestKeyboard(t *testing.T) {
	f := newFixture(t, nil)

	kb := modules.NewKeyboard()
	kbID, err := f.graph.AddNode(kb)
	require.NoError(t, err)
	in := modules.NewMIDIInput()
	inID, err := f.graph.AddNode(in)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/keyboard/"+itoa(kbID), `{"note":60,"velocity":90}`).Code)
	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/keyboard/"+itoa(kbID), `{"note":60,"off":true}`).Code)
	assert.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/keyboard/"+itoa(inID), `{"message":[144,64,100]}`).Code)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/keyboard/"+itoa(kbID), `{"note":200}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/keyboard/"+itoa(kbID), `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodPost, "/api/keyboard/4", `{"note":60}`).Code)

	// The queued events come out of the next block.
	require.NoError(t, kb.Prepare(48000, 64))
	require.NoError(t, in.Prepare(48000, 64))
	events := midi.NewBuffer(midi.DefaultCapacity)
	kb.Process(nil, events)
	require.Equal(t, 2, events.Len())
	assert.True(t, events.Events()[0].IsNoteOn())
	assert.Equal(t, 90, events.Events()[0].Velocity())
	assert.True(t, events.Events()[1].IsNoteOff())

	events.Clear()
	in.Process(nil, events)
	require.Equal(t, 1, events.Len())
	assert.Equal(t, 64, events.Events()[0].Note())
}

func TestScope(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.graph.PrepareToPlay(48000, 256))
	io := [][]float64{make([]float64, 256), make([]float64, 256)}
	for range 8 {
		f.graph.Process(io, nil)
	}

	// Node 4 is the oscillator of the default patch.
	w := f.do(t, http.MethodGet, "/api/scope/4?spectrum=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Samples  []float64 `json:"samples"`
		Spectrum []float64 `json:"spectrum"`
		Written  uint64    `json:"written"`
	}
	decode(t, w, &body)
	assert.Len(t, body.Samples, 1024)
	assert.Len(t, body.Spectrum, 513)
	assert.Equal(t, uint64(8*256), body.Written)

	// The VCA has no scope.
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodGet, "/api/scope/6", "").Code)
}

func TestChatDisabled(t *testing.T) {
	f := newFixture(t, nil)
	for _, r := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/chat", ""},
		{http.MethodPost, "/api/chat", `{"message":"hi"}`},
		{http.MethodDelete, "/api/chat", ""},
		{http.MethodGet, "/api/models", ""},
	} {
		assert.Equal(t, http.StatusServiceUnavailable, f.do(t, r.method, r.path, r.body).Code, r.path)
	}
}

func TestChat(t *testing.T) {
	reply := "```json\n{\"nodes\":[{\"id\":1,\"type\":\"Oscillator\"}],\"connections\":[]}\n```"
	f := newFixture(t, &stubProvider{reply: reply})

	w := f.do(t, http.MethodPost, "/api/chat", `{"message":"one oscillator please"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Reply assistant.Reply `json:"reply"`
	}
	decode(t, w, &body)
	assert.Equal(t, reply, body.Reply.Text)
	assert.NotEmpty(t, body.Reply.Patch)
	// Not applied without AutoApply.
	assert.Equal(t, 12, f.graph.Len())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/chat", `{}`).Code)

	w = f.do(t, http.MethodGet, "/api/chat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "one oscillator please")

	applyBody, _ := json.Marshal(map[string]string{"text": reply})
	w = f.do(t, http.MethodPost, "/api/chat/apply", string(applyBody))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, f.graph.Len())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/chat/apply", `{"text":"no json"}`).Code)

	w = f.do(t, http.MethodDelete, "/api/chat", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.svc.History(), 1)

	w = f.do(t, http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stub-1")
}
