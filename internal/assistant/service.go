package assistant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-modsynth/dsp/graph"
	"github.com/cwbudde/algo-modsynth/dsp/module"
	"github.com/cwbudde/algo-modsynth/dsp/patch"
	"github.com/cwbudde/algo-modsynth/internal/logger"
)

const (
	defaultTimeout = 60 * time.Second
	queueSize      = 16
)

var (
	// ErrNoProvider is reported when no provider is configured.
	ErrNoProvider = errors.New("assistant: no AI provider selected")
	// ErrClosed is reported for requests made after Close.
	ErrClosed = errors.New("assistant: service closed")
	// ErrNoPatch is returned by ApplyReply when the text holds no JSON.
	ErrNoPatch = errors.New("assistant: reply contains no patch")
)

const basePrompt = "You are the sound design assistant of a modular synthesizer. " +
	"Your goal is to help users create and modify patches. " +
	"When asked to create a patch, reply with a single JSON document in a ```json block " +
	`of the form {"nodes": [...], "connections": [...]} using only the module types ` +
	"and parameter ids listed below. Keep your explanations concise."

// Options configures a Service.
type Options struct {
	Model   string
	Timeout time.Duration
	// AutoApply imports every patch found in a reply, replacing the graph.
	AutoApply bool
}

// Reply is the outcome of one request.
type Reply struct {
	ConversationID string        `json:"conversationId"`
	Text           string        `json:"text,omitempty"`
	Patch          string        `json:"patch,omitempty"`
	Applied        *patch.Result `json:"applied,omitempty"`
	Err            error         `json:"-"`
}

type request struct {
	ctx   context.Context
	text  string
	reply chan Reply
}

// Service owns the conversation. Requests are served one at a time by a
// worker goroutine; replies arrive on per-request channels.
type Service struct {
	graph    *graph.Graph
	registry *module.Registry
	opts     Options

	mu             sync.Mutex
	provider       Provider
	history        []Message
	conversationID string

	sendMu   sync.RWMutex // guards closed against in-flight Send
	closed   bool
	requests chan request
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewService starts a service for g. A nil provider is allowed; requests
// then fail with ErrNoProvider until SetProvider is called.
func NewService(p Provider, g *graph.Graph, reg *module.Registry, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	s := &Service{
		graph:    g,
		registry: reg,
		opts:     opts,
		provider: p,
		requests: make(chan request, queueSize),
		done:     make(chan struct{}),
	}
	s.resetHistory()

	s.wg.Add(1)
	go s.run()
	return s
}

// SetProvider replaces the backend. Requests already running keep the
// old one.
func (s *Service) SetProvider(p Provider) {
	s.mu.Lock()
	s.provider = p
	s.mu.Unlock()
}

// SetModel selects the model passed to the provider.
func (s *Service) SetModel(model string) {
	s.mu.Lock()
	s.opts.Model = model
	s.mu.Unlock()
}

// Model returns the selected model.
func (s *Service) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Model
}

// ProviderName returns the backend name, or "" without one.
func (s *Service) ProviderName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// ConversationID identifies the current conversation. It changes when
// the history is cleared.
func (s *Service) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// History returns a copy of the conversation, system prompt first.
func (s *Service) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// ClearHistory drops every message except the system prompt and starts a
// new conversation.
func (s *Service) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetHistory()
}

func (s *Service) resetHistory() {
	s.history = []Message{{Role: RoleSystem, Content: SystemPrompt(s.registry)}}
	s.conversationID = uuid.NewString()
}

// SystemPrompt returns the instructions and module schema sent as the
// first message of every conversation.
func SystemPrompt(reg *module.Registry) string {
	return basePrompt + "\n\n" + patch.SchemaMarkdown(reg)
}

// PatchContext describes the current graph for the provider.
func (s *Service) PatchContext() string {
	data, err := patch.Export(s.graph).Marshal()
	if err != nil {
		return ""
	}
	return "### Current Patch\n\n```json\n" + string(data) + "\n```\n"
}

// Send queues text and returns the channel the reply arrives on. The
// channel receives exactly one value.
func (s *Service) Send(ctx context.Context, text string) <-chan Reply {
	reply := make(chan Reply, 1)

	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		reply <- Reply{Err: ErrClosed}
		return reply
	}
	select {
	case s.requests <- request{ctx: ctx, text: text, reply: reply}:
	case <-ctx.Done():
		reply <- Reply{Err: ctx.Err()}
	}
	return reply
}

// Ask sends text and waits for the reply.
func (s *Service) Ask(ctx context.Context, text string) Reply {
	select {
	case r := <-s.Send(ctx, text):
		return r
	case <-ctx.Done():
		return Reply{Err: ctx.Err()}
	}
}

// Models lists the provider's models within the request timeout.
func (s *Service) Models(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	p := s.provider
	s.mu.Unlock()
	if p == nil {
		return nil, ErrNoProvider
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	models, err := p.Models(ctx)
	if err != nil {
		return nil, fmt.Errorf("assistant: list models: %w", err)
	}
	return models, nil
}

// ApplyReply extracts the patch from text and imports it, replacing the
// graph.
func (s *Service) ApplyReply(text string) (*patch.Result, error) {
	body, ok := patch.ExtractJSON(text)
	if !ok {
		return nil, ErrNoPatch
	}
	return s.ApplyPatch(body)
}

// ApplyPatch imports a patch document, replacing the graph.
func (s *Service) ApplyPatch(doc string) (*patch.Result, error) {
	res, err := patch.Import([]byte(doc), s.graph, s.registry, true)
	if err != nil {
		return res, err
	}
	fields := logger.Fields{
		"nodes":       res.NodesCreated,
		"connections": res.ConnectionsApplied,
		"skipped":     res.NodesSkipped + res.ConnectionsSkipped,
	}
	logger.Info("assistant patch applied", fields)
	for _, d := range res.Diagnostics {
		logger.Warn("assistant patch", logger.Fields{"diagnostic": d})
	}
	return res, nil
}

// Close stops the worker. Queued requests are answered with ErrClosed.
func (s *Service) Close() {
	s.sendMu.Lock()
	wasClosed := s.closed
	s.closed = true
	s.sendMu.Unlock()

	if !wasClosed {
		close(s.done)
	}
	s.wg.Wait()
}

func (s *Service) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			s.drain()
			return
		case req := <-s.requests:
			req.reply <- s.handle(req)
		}
	}
}

func (s *Service) drain() {
	for {
		select {
		case req := <-s.requests:
			req.reply <- Reply{Err: ErrClosed}
		default:
			return
		}
	}
}

func (s *Service) handle(req request) Reply {
	s.mu.Lock()
	p := s.provider
	model := s.opts.Model
	id := s.conversationID
	turn := Message{Role: RoleUser, Content: req.text}
	conversation := append(slices.Clone(s.history), turn)
	s.mu.Unlock()

	reply := Reply{ConversationID: id}
	if p == nil {
		reply.Err = ErrNoProvider
		return reply
	}
	if err := req.ctx.Err(); err != nil {
		reply.Err = err
		return reply
	}

	conversation[0].Content += "\n\n" + s.PatchContext()

	ctx, cancel := context.WithTimeout(req.ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Complete(ctx, model, conversation)
	fields := logger.Fields{
		"provider":        p.Name(),
		"model":           model,
		"conversation_id": id,
		"duration_ms":     time.Since(start).Milliseconds(),
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("assistant: no reply within %s: %w", s.opts.Timeout, err)
		} else {
			err = fmt.Errorf("assistant: %s: %w", p.Name(), err)
		}
		logger.Error("assistant request failed", err, fields)
		reply.Err = err
		return reply
	}
	logger.Info("assistant reply", fields)

	// The turn is recorded only once answered. A cleared history starts a
	// new conversation; the reply belongs to the old one.
	s.mu.Lock()
	if s.conversationID == id {
		s.history = append(s.history, turn, Message{Role: RoleAssistant, Content: text})
	}
	s.mu.Unlock()

	reply.Text = text
	if body, ok := patch.ExtractJSON(text); ok {
		reply.Patch = strings.TrimSpace(body)
		if s.opts.AutoApply {
			res, err := s.ApplyPatch(reply.Patch)
			reply.Applied = res
			if err != nil {
				logger.Warn("assistant patch rejected", logger.Fields{"error": err, "conversation_id": id})
				reply.Err = err
			}
		}
	}
	return reply
}
