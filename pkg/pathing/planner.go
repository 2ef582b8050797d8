package pathing

import (
	"context"
	"log/slog"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/ports"
	"github.com/aretw0/tactic/pkg/search"
)

// Sender delivers planner notifications. *dispatch.Dispatcher satisfies it.
type Sender interface {
	Dispatch(msg domain.Message) error
}

// Smoothing selects the post-processing applied by Path.
type Smoothing int

const (
	SmoothNone Smoothing = iota
	SmoothQuickMode
	SmoothPreciseMode
)

// Option configures a Planner.
type Option func(*Planner)

// WithHeuristic sets the A* heuristic. The default is Euclidean distance.
func WithHeuristic(h graph.Heuristic) Option {
	return func(p *Planner) {
		p.heuristic = h
	}
}

// WithAlgorithm selects the algorithm for position requests. Item requests
// always use Dijkstra.
func WithAlgorithm(alg search.Algorithm) Option {
	return func(p *Planner) {
		p.algorithm = alg
	}
}

// WithLogger sets the planner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithHooks reports resolved searches through hooks.OnSearchResolve.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Planner) {
		p.hooks = hooks
	}
}

// WithClock sets the clock used to timestamp events.
func WithClock(c ports.Clock) Option {
	return func(p *Planner) {
		p.clock = c
	}
}

// WithItemActive filters item searches to nodes whose item is currently available.
func WithItemActive(active func(node int) bool) Option {
	return func(p *Planner) {
		p.itemActive = active
	}
}

// WithAdmissibilityCheck enables the A* heuristic check on every search.
func WithAdmissibilityCheck(enabled bool) Option {
	return func(p *Planner) {
		p.checkAdmissible = enabled
	}
}

// WithSmoothing sets how Path merges edges the agent can walk straight across.
func WithSmoothing(s Smoothing) Option {
	return func(p *Planner) {
		p.smoothing = s
	}
}

// Planner owns at most one search for one agent. A new request supersedes the
// previous one. Results arrive as MsgPathReady or MsgNoPathAvailable.
type Planner struct {
	agent  ports.Agent
	g      graph.Graph
	mgr    *Manager
	sender Sender

	heuristic       graph.Heuristic
	algorithm       search.Algorithm
	itemActive      func(node int) bool
	checkAdmissible bool
	smoothing       Smoothing
	hooks           domain.LifecycleHooks
	clock           ports.Clock
	logger          *slog.Logger

	current     *search.Search
	estimate    *costEstimate
	destination domain.Vec2
	// direct is set when the destination was visible and no search ran.
	direct bool
	// toPosition is false for item searches, which end on the item node itself.
	toPosition bool
}

// NewPlanner creates a planner for agent over g.
func NewPlanner(agent ports.Agent, g graph.Graph, mgr *Manager, sender Sender, opts ...Option) *Planner {
	p := &Planner{
		agent:     agent,
		g:         g,
		mgr:       mgr,
		sender:    sender,
		heuristic: graph.Euclid,
		algorithm: search.AlgorithmAStar,
		clock:     ports.SystemClock{},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Agent returns the planner's owner.
func (p *Planner) Agent() ports.Agent { return p.agent }

// Graph returns the navigation graph searched by the planner.
func (p *Planner) Graph() graph.Graph { return p.g }

// Reset drops any pending search.
func (p *Planner) Reset() {
	p.mgr.Unregister(p)
	p.current = nil
	p.direct = false
}

// RequestPathToPosition starts a search towards target. When target is in
// sight the path is ready immediately. It returns false when either end
// cannot be attached to the graph.
func (p *Planner) RequestPathToPosition(target domain.Vec2) bool {
	p.Reset()
	p.destination = target
	p.toPosition = true

	if p.agent.HasLineOfSight(target) {
		p.direct = true
		p.notify(domain.MsgPathReady)
		return true
	}

	src := p.closestNodeTo(p.agent.Position())
	if src < 0 {
		p.logger.Debug("no graph node reachable from agent", "agent", p.agent.ID())
		return false
	}
	dst := p.closestNodeTo(target)
	if dst < 0 {
		p.logger.Debug("no graph node reachable from target", "agent", p.agent.ID(), "target", target)
		return false
	}

	if p.algorithm == search.AlgorithmDijkstra {
		p.current = search.NewDijkstra(p.g, src, dst, search.WithLogger(p.logger))
	} else {
		p.current = search.NewAStar(p.g, src, dst, p.heuristic,
			search.WithLogger(p.logger),
			search.WithAdmissibilityCheck(p.checkAdmissible),
		)
	}
	p.mgr.Register(p)
	return true
}

// RequestPathToItem starts a Dijkstra search for the nearest available node tagged item.
func (p *Planner) RequestPathToItem(item string) bool {
	p.Reset()
	p.toPosition = false

	src := p.closestNodeTo(p.agent.Position())
	if src < 0 {
		return false
	}
	p.current = search.NewDijkstra(p.g, src, -1,
		search.WithTermination(search.ReachItem(item, p.itemActive)),
		search.WithLogger(p.logger),
	)
	p.mgr.Register(p)
	return true
}

// CycleOnce advances the pending search by one step and notifies the agent
// once it resolves.
func (p *Planner) CycleOnce() search.Outcome {
	if p.current == nil {
		return search.NotFound
	}
	out := p.current.Step()
	switch out {
	case search.Found:
		p.resolved(out)
		p.notify(domain.MsgPathReady)
	case search.NotFound:
		p.resolved(out)
		p.notify(domain.MsgNoPathAvailable)
	}
	return out
}

// Pending reports whether a search is still running.
func (p *Planner) Pending() bool {
	return p.current != nil && !p.current.Outcome().Terminal()
}

// Path returns the resolved path as edges the agent can follow, from its
// current position to the destination. It returns nil before a path is ready.
func (p *Planner) Path() []search.PathEdge {
	pos := p.agent.Position()
	if p.direct {
		return []search.PathEdge{{From: pos, To: p.destination, FromNode: -1, ToNode: -1, Behavior: domain.BehaviorNormal}}
	}
	if p.current == nil || p.current.Outcome() != search.Found {
		return nil
	}

	path := p.current.PathAsEdges()
	srcPos := p.g.Node(p.current.Source()).Pos
	if srcPos != pos {
		lead := search.PathEdge{From: pos, To: srcPos, FromNode: -1, ToNode: p.current.Source(), Behavior: domain.BehaviorNormal}
		path = append([]search.PathEdge{lead}, path...)
	}
	if p.toPosition {
		end := p.g.Node(p.current.Target()).Pos
		if end != p.destination {
			path = append(path, search.PathEdge{From: end, To: p.destination, FromNode: p.current.Target(), ToNode: -1, Behavior: domain.BehaviorNormal})
		}
	}

	switch p.smoothing {
	case SmoothQuickMode:
		path = SmoothQuick(p.agent, path)
	case SmoothPreciseMode:
		path = SmoothPrecise(p.agent, path)
	}
	return path
}

// Destination returns the position of the last request. For item searches it
// is the item node once found.
func (p *Planner) Destination() domain.Vec2 {
	if !p.toPosition && p.current != nil && p.current.Outcome() == search.Found {
		return p.g.Node(p.current.Target()).Pos
	}
	return p.destination
}

// CostToItem estimates the path cost to the nearest available item. Each call
// spends at most the manager's per-tick budget. An unresolved estimate reports
// false and resumes on the next call from the same node. A found cost is reused
// while its item stays available. It does not disturb the pending request.
func (p *Planner) CostToItem(ctx context.Context, item string) (float64, bool) {
	src := p.closestNodeTo(p.agent.Position())
	if src < 0 {
		p.estimate = nil
		return 0, false
	}

	e := p.estimate
	if e == nil || e.src != src || e.item != item || e.stale(p.itemActive) {
		e = &costEstimate{
			src:  src,
			item: item,
			s:    search.NewDijkstra(p.g, src, -1, search.WithTermination(search.ReachItem(item, p.itemActive))),
		}
		p.estimate = e
	}

	out := e.s.Outcome()
	if !out.Terminal() {
		var err error
		out, err = e.s.Run(ctx, p.mgr.Budget())
		if err != nil {
			return 0, false
		}
	}
	if out != search.Found {
		if out.Terminal() {
			p.estimate = nil
		}
		return 0, false
	}
	return e.s.CostToTarget(), true
}

// costEstimate is an item search resumed across CostToItem calls.
type costEstimate struct {
	src  int
	item string
	s    *search.Search
}

func (e *costEstimate) stale(active func(node int) bool) bool {
	return e.s.Outcome() == search.Found && active != nil && !active(e.s.Target())
}

func (p *Planner) closestNodeTo(pos domain.Vec2) int {
	return graph.ClosestNode(p.g, pos, func(n graph.Node) bool {
		return p.agent.CanWalkBetween(pos, n.Pos)
	})
}

func (p *Planner) notify(kind domain.MessageKind) {
	msg := domain.Message{Kind: kind, Sender: "pathing", Receiver: p.agent.ID()}
	if err := p.sender.Dispatch(msg); err != nil {
		p.logger.Warn("path notification not delivered", "agent", p.agent.ID(), "kind", kind, "err", err)
	}
}

func (p *Planner) resolved(out search.Outcome) {
	s := p.current
	p.logger.Debug("path search resolved",
		"agent", p.agent.ID(),
		"algorithm", s.Algorithm(),
		"outcome", out,
		"steps", s.Steps(),
		"cost", s.CostToTarget(),
	)
	if p.hooks.OnSearchResolve == nil {
		return
	}
	p.hooks.OnSearchResolve(context.Background(), &domain.SearchEvent{
		EventBase: domain.EventBase{
			Timestamp: p.clock.Now(),
			Type:      domain.EventSearchResolve,
			AgentID:   p.agent.ID(),
		},
		Algorithm: string(s.Algorithm()),
		Outcome:   out.String(),
		Steps:     s.Steps(),
		Cost:      s.CostToTarget(),
		Source:    s.Source(),
		Target:    s.Target(),
	})
}
