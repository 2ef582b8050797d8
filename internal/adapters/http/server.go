package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tactic"
	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/internal/presentation/graph"
	"github.com/aretw0/tactic/pkg/domain"
	nav "github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/session"
)

//go:embed openapi.yaml
var rawSpec []byte

// worldLock is the session key serializing ticks.
const worldLock = "world"

// MaxTicksPerRequest caps POST /tick?n=.
const MaxTicksPerRequest = 10000

// Scheduler is the part of tactic.Scheduler the API drives.
type Scheduler interface {
	Agents() []string
	Snapshot(id string) (*domain.Snapshot, error)
	Snapshots() []*domain.Snapshot
	Deliver(msg domain.Message) error
	Command(id string, dest domain.Vec2, queue bool) error
	Run(ctx context.Context, n int) error
	CurrentTick() uint64
	FindPath(ctx context.Context, req tactic.PathRequest) (*tactic.PathResult, error)
	Graph() nav.Graph
}

var _ Scheduler = (*tactic.Scheduler)(nil)

// Server serves the scheduler over HTTP.
type Server struct {
	sched    Scheduler
	sessions *session.Manager
	streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	doc      *openapi3.T
}

// Option configures the Server.
type Option func(*Server)

// WithSessions serializes mutations through m. Without it a local manager is used.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithStreams serves GET /events from sm. Register sm.Hooks() on the scheduler.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// NewHandler creates a new HTTP handler for the scheduler.
func NewHandler(sched Scheduler, opts ...Option) (http.Handler, error) {
	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s := &Server{
		sched:    sched,
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
		doc:      doc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(nil, session.WithLogger(s.logger))
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/agents", s.ListAgents)
	r.Get("/agents/{id}", s.GetAgent)
	r.Post("/agents/{id}/messages", s.DeliverMessage)
	r.Post("/agents/{id}/command", s.CommandAgent)
	r.Post("/tick", s.Tick)
	r.Post("/paths", s.FindPath)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.doc.Info != nil {
		apiVersion = s.doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "tactic-http",
		"version":     strings.TrimSpace(tactic.Version),
		"api_version": apiVersion,
	})
}

// ListAgents handles the GET /agents request.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sched.Agents())
}

// GetAgent handles the GET /agents/{id} request.
func (s *Server) GetAgent(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sched.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

type messageRequest struct {
	Kind    domain.MessageKind `json:"kind"`
	Sender  string             `json:"sender,omitempty"`
	Payload any                `json:"payload,omitempty"`
}

// DeliverMessage handles the POST /agents/{id}/messages request.
func (s *Server) DeliverMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Kind == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("DeliverMessage: invalid request body", "err", err)
		return
	}

	err := s.sessions.WithLock(r.Context(), id, func(context.Context) error {
		return s.sched.Deliver(domain.Message{
			Kind:     body.Kind,
			Sender:   body.Sender,
			Receiver: id,
			Payload:  body.Payload,
		})
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type commandRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Queue bool    `json:"queue,omitempty"`
}

// CommandAgent handles the POST /agents/{id}/command request.
func (s *Server) CommandAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body commandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.sessions.WithLock(r.Context(), id, func(context.Context) error {
		return s.sched.Command(id, domain.Vec2{X: body.X, Y: body.Y}, body.Queue)
	})
	switch {
	case errors.Is(err, domain.ErrAgentNotFound):
		s.writeError(w, err)
	case err != nil:
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

// Tick handles the POST /tick request.
func (s *Server) Tick(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > MaxTicksPerRequest {
			http.Error(w, fmt.Sprintf("n must be between 1 and %d", MaxTicksPerRequest), http.StatusBadRequest)
			return
		}
		n = v
	}

	err := s.sessions.WithLock(r.Context(), worldLock, func(ctx context.Context) error {
		return s.sched.Run(ctx, n)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"tick":   s.sched.CurrentTick(),
		"agents": s.sched.Snapshots(),
	})
}

// FindPath handles the POST /paths request.
func (s *Server) FindPath(w http.ResponseWriter, r *http.Request) {
	var req tactic.PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.sched.FindPath(r.Context(), req)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.sched.Graph()
	overlay := &graph.Overlay{Agents: graph.AgentNodes(g, s.sched.Snapshots())}

	q := r.URL.Query()
	if q.Has("from") || q.Has("to") {
		from, err1 := strconv.Atoi(q.Get("from"))
		to, err2 := strconv.Atoi(q.Get("to"))
		if err1 != nil || err2 != nil {
			http.Error(w, "from and to must both be node indices", http.StatusBadRequest)
			return
		}
		res, err := s.sched.FindPath(r.Context(), tactic.PathRequest{From: from, To: to})
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		overlay.Path = res.Nodes
		overlay.Visited = res.Visited
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, overlay))
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if s.streams == nil {
		http.Error(w, "Event streaming is not enabled", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	agent := r.URL.Query().Get("agent")
	ch, cancel := s.streams.Subscribe(agent)
	defer cancel()
	s.logger.Info("SSE: subscribed", "agent", agent)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "agent", agent)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAgentNotFound), errors.Is(err, domain.ErrSnapshotNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidGraph):
		code = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
