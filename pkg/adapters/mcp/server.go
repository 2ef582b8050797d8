package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/tactic"
	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/internal/presentation/graph"
	"github.com/aretw0/tactic/pkg/domain"
	nav "github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/session"
)

// GraphResource is the URI of the Mermaid rendering of the navigation graph.
const GraphResource = "tactic://graph"

// MaxTicksPerCall caps the tick tool.
const MaxTicksPerCall = 10000

// Scheduler is the part of tactic.Scheduler exposed over MCP.
type Scheduler interface {
	Snapshot(id string) (*domain.Snapshot, error)
	Snapshots() []*domain.Snapshot
	Run(ctx context.Context, n int) error
	CurrentTick() uint64
	FindPath(ctx context.Context, req tactic.PathRequest) (*tactic.PathResult, error)
	Graph() nav.Graph
}

// GraphDescription is the describe_graph result.
type GraphDescription struct {
	Nodes []nav.Node `json:"nodes" jsonschema_description:"Navigation nodes by index"`
	Edges []nav.Edge `json:"edges" jsonschema_description:"Directed edges with cost and behavior"`
}

// TickResult is the tick tool result.
type TickResult struct {
	Tick   uint64             `json:"tick" jsonschema_description:"Completed ticks after advancing"`
	Agents []*domain.Snapshot `json:"agents" jsonschema_description:"Agent snapshots after advancing"`
}

// Server wraps the scheduler and exposes it as an MCP Server.
type Server struct {
	sched     Scheduler
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions serializes ticks through m.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sched Scheduler, opts ...Option) *Server {
	s := &Server{
		sched:     sched,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tactic-mcp", strings.TrimSpace(tactic.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(nil, session.WithLogger(s.logger))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("find_path",
		mcp.WithDescription("Run a one-shot A* or Dijkstra search between two graph nodes."),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("Source node index")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("Target node index")),
		mcp.WithString("algorithm", mcp.Description("astar (default) or dijkstra")),
		mcp.WithString("heuristic", mcp.Description("euclid (default), manhattan or zero")),
		mcp.WithOutputSchema[tactic.PathResult](),
	), mcp.NewStructuredToolHandler(s.handleFindPath))

	s.mcpServer.AddTool(mcp.NewTool("describe_graph",
		mcp.WithDescription("List the navigation graph's nodes and edges."),
		mcp.WithOutputSchema[GraphDescription](),
	), mcp.NewStructuredToolHandler(s.handleDescribeGraph))

	s.mcpServer.AddTool(mcp.NewTool("tick",
		mcp.WithDescription("Advance the simulation and return every agent's snapshot."),
		mcp.WithNumber("n", mcp.Description("Ticks to advance (default 1)")),
		mcp.WithOutputSchema[TickResult](),
	), mcp.NewStructuredToolHandler(s.handleTick))

	s.mcpServer.AddTool(mcp.NewTool("inspect_agent",
		mcp.WithDescription("Show an agent's position, health and active goal chain."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Agent ID")),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleInspectAgent))
}

func (s *Server) handleFindPath(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (tactic.PathResult, error) {
	from, ok1 := domain.PayloadInt(args["from"])
	to, ok2 := domain.PayloadInt(args["to"])
	if !ok1 || !ok2 {
		return tactic.PathResult{}, errors.New("from and to must be integer node indices")
	}
	algorithm, _ := args["algorithm"].(string)
	heuristic, _ := args["heuristic"].(string)

	res, err := s.sched.FindPath(ctx, tactic.PathRequest{From: from, To: to, Algorithm: algorithm, Heuristic: heuristic})
	if err != nil {
		return tactic.PathResult{}, fmt.Errorf("find path failed: %w", err)
	}
	return *res, nil
}

func (s *Server) handleDescribeGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphDescription, error) {
	g := s.sched.Graph()
	desc := GraphDescription{Nodes: make([]nav.Node, 0, g.NodeCount()), Edges: []nav.Edge{}}
	for i := 0; i < g.NodeCount(); i++ {
		desc.Nodes = append(desc.Nodes, g.Node(i))
		desc.Edges = append(desc.Edges, g.Edges(i)...)
	}
	return desc, nil
}

func (s *Server) handleTick(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TickResult, error) {
	n := 1
	if raw, ok := args["n"]; ok {
		v, ok := domain.PayloadInt(raw)
		if !ok || v < 1 || v > MaxTicksPerCall {
			return TickResult{}, fmt.Errorf("n must be an integer between 1 and %d", MaxTicksPerCall)
		}
		n = v
	}

	err := s.sessions.WithLock(ctx, "world", func(ctx context.Context) error {
		return s.sched.Run(ctx, n)
	})
	if err != nil {
		return TickResult{}, fmt.Errorf("tick failed: %w", err)
	}
	return TickResult{Tick: s.sched.CurrentTick(), Agents: s.sched.Snapshots()}, nil
}

func (s *Server) handleInspectAgent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.Snapshot, error) {
	id, _ := args["id"].(string)
	snap, err := s.sched.Snapshot(id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return *snap, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphResource, "Navigation graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphResource,
				MIMEType: "text/plain",
				Text:     s.mermaid(),
			},
		}, nil
	})
}

func (s *Server) mermaid() string {
	g := s.sched.Graph()
	return graph.GenerateMermaid(g, &graph.Overlay{Agents: graph.AgentNodes(g, s.sched.Snapshots())})
}
