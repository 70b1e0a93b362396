package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/midi"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/modules"
	"github.com/cwbudde/algo-modsynth/dsp/patch"
	"github.com/cwbudde/algo-modsynth/dsp/scope"
)

type createNodeRequest struct {
	Type     string          `json:"type" binding:"required"`
	Params   map[string]any  `json:"params"`
	Position *graph.Position `json:"position"`
}

func nodeID(c *gin.Context) (graph.NodeID, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid node id %q", c.Param("id")))
		return 0, false
	}
	return graph.NodeID(id), true
}

func (s *Server) lookup(c *gin.Context) (graph.NodeID, module.Module, bool) {
	id, ok := nodeID(c)
	if !ok {
		return 0, nil, false
	}
	m := s.graph.Module(id)
	if m == nil {
		errorJSON(c, http.StatusNotFound, fmt.Errorf("%w: %d", graph.ErrUnknownNode, id))
		return 0, nil, false
	}
	return id, m, true
}

// applyParams checks every value first and writes them only if all are
// valid, so a bad request leaves the module unchanged.
func applyParams(m module.Module, values map[string]any) error {
	type update struct {
		p   *module.Param
		raw float64
	}
	updates := make([]update, 0, len(values))
	var errs []error
	for key, v := range values {
		p := m.Params().Get(key)
		if p == nil {
			errs = append(errs, fmt.Errorf("%s has no parameter %q", m.Name(), key))
			continue
		}
		raw, err := module.ParseValue(p, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		updates = append(updates, update{p: p, raw: raw})
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	for _, u := range updates {
		u.p.Set(u.raw)
	}
	return nil
}

func (s *Server) createNode(c *gin.Context) {
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	m, err := s.registry.Create(req.Type)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if err := applyParams(m, req.Params); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var pos graph.Position
	if req.Position != nil {
		pos = *req.Position
	}
	var id graph.NodeID
	err = s.graph.Edit(func(e *graph.Editor) error {
		var err error
		id, err = e.AddNode(m, pos)
		return err
	})
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "type": req.Type})
}

func (s *Server) deleteNode(c *gin.Context) {
	id, _, ok := s.lookup(c)
	if !ok {
		return
	}
	s.graph.RemoveNode(id)
	c.Status(http.StatusNoContent)
}

func (s *Server) setParams(c *gin.Context) {
	_, m, ok := s.lookup(c)
	if !ok {
		return
	}
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if err := applyParams(m, values); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	params := make(map[string]any, m.Params().Len())
	for _, p := range m.Params().All() {
		params[p.ID] = p.Exported()
	}
	c.JSON(http.StatusOK, gin.H{"params": params})
}

func (s *Server) setPosition(c *gin.Context) {
	id, ok := nodeID(c)
	if !ok {
		return
	}
	var pos graph.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if err := s.graph.SetPosition(id, pos); err != nil {
		errorJSON(c, graphStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func connectionFrom(doc patch.ConnectionDoc) graph.Connection {
	conn := graph.Connection{
		Source: graph.Endpoint{Node: graph.NodeID(doc.Src), Channel: doc.SrcPort},
		Dest:   graph.Endpoint{Node: graph.NodeID(doc.Dst), Channel: doc.DstPort},
	}
	if doc.IsMIDI {
		conn.Source.Channel = graph.MIDIChannel
		conn.Dest.Channel = graph.MIDIChannel
	}
	return conn
}

func (s *Server) createConnection(c *gin.Context) {
	var doc patch.ConnectionDoc
	if err := c.ShouldBindJSON(&doc); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if err := s.graph.AddConnection(connectionFrom(doc)); err != nil {
		errorJSON(c, graphStatus(err), err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) deleteConnection(c *gin.Context) {
	var doc patch.ConnectionDoc
	if err := c.ShouldBindJSON(&doc); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if !s.graph.RemoveConnection(connectionFrom(doc)) {
		errorJSON(c, http.StatusNotFound, errors.New("no such connection"))
		return
	}
	c.Status(http.StatusNoContent)
}

// keyboardRequest is either a note or raw MIDI bytes.
type keyboardRequest struct {
	Note     *int  `json:"note" binding:"omitempty,min=0,max=127"`
	Velocity int   `json:"velocity" binding:"min=0,max=127"`
	Off      bool  `json:"off"`
	Message  []int `json:"message" binding:"omitempty,dive,min=0,max=255"`
}

func (r keyboardRequest) message() (gomidi.Message, error) {
	switch {
	case len(r.Message) > 0:
		msg := make(gomidi.Message, len(r.Message))
		for i, b := range r.Message {
			msg[i] = byte(b)
		}
		return msg, nil
	case r.Note == nil:
		return nil, errors.New("note or message required")
	case r.Off:
		return gomidi.NoteOff(midi.DefaultChannel, uint8(*r.Note)), nil
	default:
		vel := r.Velocity
		if vel == 0 {
			vel = 100
		}
		return gomidi.NoteOn(midi.DefaultChannel, uint8(*r.Note), uint8(vel)), nil
	}
}

// keyboard delivers a note to a MIDI Keyboard or Midi Input node.
func (s *Server) keyboard(c *gin.Context) {
	_, m, ok := s.lookup(c)
	if !ok {
		return
	}
	var req keyboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	msg, err := req.message()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var accepted bool
	switch target := m.(type) {
	case *modules.MIDIInput:
		accepted = target.Push(msg)
	case *modules.Keyboard:
		e, ok := midi.FromMessage(msg, 0)
		switch {
		case !ok:
		case e.IsNoteOn():
			accepted = target.NoteOn(e.Note(), e.Velocity())
		case e.IsNoteOff():
			accepted = target.NoteOff(e.Note())
		}
	default:
		errorJSON(c, http.StatusUnprocessableEntity, fmt.Errorf("%s does not take note input", m.Name()))
		return
	}
	if !accepted {
		errorJSON(c, http.StatusUnprocessableEntity, fmt.Errorf("message % X not accepted", []byte(msg)))
		return
	}
	c.Status(http.StatusAccepted)
}

// getScope returns the node's recent output, plus a magnitude spectrum
// with ?spectrum=true.
func (s *Server) getScope(c *gin.Context) {
	_, m, ok := s.lookup(c)
	if !ok {
		return
	}
	v, isVisual := m.(module.Visualizer)
	if !isVisual {
		errorJSON(c, http.StatusUnprocessableEntity, fmt.Errorf("%s has no scope", m.Name()))
		return
	}
	buf := v.Scope()
	samples := make([]float64, buf.Len())
	buf.Snapshot(samples)
	resp := gin.H{"samples": samples, "written": buf.Written()}

	if want, _ := strconv.ParseBool(c.Query("spectrum")); want {
		mags, err := s.spectrum(buf)
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}
		resp["spectrum"] = mags
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) spectrum(buf *scope.Buffer) ([]float64, error) {
	s.analyzerMu.Lock()
	defer s.analyzerMu.Unlock()

	if s.analyzer == nil {
		a, err := scope.NewAnalyzer(scope.DefaultSize)
		if err != nil {
			return nil, err
		}
		s.analyzer = a
	}
	mags := make([]float64, s.analyzer.Bins())
	if err := s.analyzer.Magnitudes(buf, mags); err != nil {
		return nil, err
	}
	return mags, nil
}
