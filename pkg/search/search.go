package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/heap"
)

// Termination decides whether a popped node ends a Dijkstra search.
type Termination func(g graph.Graph, target, node int) bool

// ReachTarget is the default termination: stop when the target is popped.
func ReachTarget(_ graph.Graph, target, node int) bool { return node == target }

// ReachItem stops on the first node tagged with item for which active returns true.
// A nil active treats every tagged node as available.
func ReachItem(item string, active func(node int) bool) Termination {
	return func(g graph.Graph, _, node int) bool {
		if g.Node(node).Item != item {
			return false
		}
		return active == nil || active(node)
	}
}

// Option configures a search.
type Option func(*config)

type config struct {
	terminate       Termination
	logger          *slog.Logger
	checkAdmissible bool
}

// WithTermination overrides the Dijkstra termination predicate.
// A* always terminates on its target and ignores this option.
func WithTermination(t Termination) Option {
	return func(c *config) {
		c.terminate = t
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAdmissibilityCheck verifies, once a path is found, that the heuristic did
// not overestimate the remaining cost at any node on it. Violations are logged
// as warnings; results are never altered.
func WithAdmissibilityCheck(enabled bool) Option {
	return func(c *config) {
		c.checkAdmissible = enabled
	}
}

// Search is a resumable A* or Dijkstra search.
// It is not safe for concurrent use.
type Search struct {
	algorithm Algorithm
	g         graph.Graph
	source    int
	target    int // effective target once found
	h         graph.Heuristic
	terminate Termination
	cfg       config

	f    *frontier
	pq   *heap.Indexed[float64]
	outc Outcome

	steps  int
	frozen int
}

// NewAStar creates an A* search from source to target guided by h.
func NewAStar(g graph.Graph, source, target int, h graph.Heuristic, opts ...Option) *Search {
	if h == nil {
		h = graph.Zero
	}
	s := newSearch(AlgorithmAStar, g, source, target, h, opts)
	s.terminate = ReachTarget
	return s
}

// NewDijkstra creates a Dijkstra search from source. It stops on target unless
// WithTermination supplies another predicate.
func NewDijkstra(g graph.Graph, source, target int, opts ...Option) *Search {
	return newSearch(AlgorithmDijkstra, g, source, target, graph.Zero, opts)
}

func newSearch(alg Algorithm, g graph.Graph, source, target int, h graph.Heuristic, opts []Option) *Search {
	cfg := config{
		terminate: ReachTarget,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := g.NodeCount()
	s := &Search{
		algorithm: alg,
		g:         g,
		source:    source,
		target:    target,
		h:         h,
		terminate: cfg.terminate,
		cfg:       cfg,
		f:         newFrontier(n),
	}
	s.pq = heap.NewIndexed(s.f.key, n)

	if source < 0 || source >= n || (alg == AlgorithmAStar && (target < 0 || target >= n)) {
		s.outc = NotFound
		return s
	}
	s.f.cost[source] = 0
	s.f.key[source] = h(g, target, source)
	s.f.seen[source] = true
	s.mustInsert(source)
	return s
}

// Step performs one unit of work: pop the cheapest frontier node, freeze it,
// test termination, then relax its outgoing edges. Once the search has
// resolved, Step returns the same outcome without doing any work.
func (s *Search) Step() Outcome {
	if s.outc.Terminal() {
		return s.outc
	}
	if s.pq.IsEmpty() {
		s.outc = NotFound
		return s.outc
	}

	s.steps++
	n, err := s.pq.PopMin()
	if err != nil {
		panic(fmt.Errorf("search: pop on non-empty frontier: %w", err))
	}
	s.f.freeze(n)
	s.frozen++

	if s.terminate(s.g, s.target, n) {
		s.target = n
		s.outc = Found
		if s.cfg.checkAdmissible {
			s.checkAdmissibility()
		}
		return s.outc
	}

	for _, e := range s.g.Edges(n) {
		m := e.To
		gCost := s.f.cost[n] + e.Cost
		switch {
		case !s.f.seen[m]:
			s.f.cost[m] = gCost
			s.f.key[m] = gCost + s.h(s.g, s.target, m)
			s.f.seen[m] = true
			s.f.bestIncoming[m] = &e
			s.mustInsert(m)
		case gCost < s.f.cost[m] && !s.f.frozen[m]:
			s.f.cost[m] = gCost
			s.f.key[m] = gCost + s.h(s.g, s.target, m)
			s.f.bestIncoming[m] = &e
			if err := s.pq.DecreaseKey(m); err != nil {
				panic(fmt.Errorf("search: relax %d->%d: %w", n, m, err))
			}
		}
	}
	return Incomplete
}

func (s *Search) mustInsert(n int) {
	if err := s.pq.Insert(n); err != nil {
		panic(fmt.Errorf("search: frontier sized to graph: %w", err))
	}
}

// Run steps the search until it resolves, the context is done, or maxSteps
// steps have been taken (maxSteps <= 0 means no limit).
func (s *Search) Run(ctx context.Context, maxSteps int) (Outcome, error) {
	for i := 0; maxSteps <= 0 || i < maxSteps; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return s.outc, err
			}
		}
		if out := s.Step(); out.Terminal() {
			return out, nil
		}
	}
	return s.outc, nil
}

func (s *Search) Algorithm() Algorithm { return s.algorithm }

func (s *Search) Outcome() Outcome { return s.outc }

func (s *Search) Source() int { return s.source }

// Target returns the effective target. For Dijkstra with a custom termination
// this is the node the search stopped on.
func (s *Search) Target() int { return s.target }

// Steps counts calls to Step that popped a node.
func (s *Search) Steps() int { return s.steps }

// Frozen counts nodes finalized into the shortest-path tree.
func (s *Search) Frozen() int { return s.frozen }

// SPT returns the shortest-path tree: the frozen incoming edge per node.
// Unfrozen nodes and the source hold nil.
func (s *Search) SPT() []*graph.Edge {
	return append([]*graph.Edge(nil), s.f.spt...)
}

// CostToTarget returns the path cost once found, otherwise 0.
func (s *Search) CostToTarget() float64 {
	if s.outc != Found {
		return 0
	}
	return s.f.cost[s.target]
}

// PathToTarget returns node indices from source to target, or nil when no
// path has been established.
func (s *Search) PathToTarget() []int {
	edges := s.edgesToTarget()
	if edges == nil {
		if s.outc == Found && s.target == s.source {
			return []int{s.source}
		}
		return nil
	}
	path := make([]int, 0, len(edges)+1)
	path = append(path, s.source)
	for _, e := range edges {
		path = append(path, e.To)
	}
	return path
}

// PathEdge is one hop of a resolved path, with the positions the agent moves between.
type PathEdge struct {
	From     domain.Vec2     `json:"from"`
	To       domain.Vec2     `json:"to"`
	FromNode int             `json:"from_node"`
	ToNode   int             `json:"to_node"`
	Behavior domain.Behavior `json:"behavior"`
	Payload  int             `json:"payload,omitempty"`
	Cost     float64         `json:"cost"`
}

// PathAsEdges returns the path as traversal-ordered edges, or nil when no path
// has been established.
func (s *Search) PathAsEdges() []PathEdge {
	edges := s.edgesToTarget()
	out := make([]PathEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, PathEdge{
			From:     s.g.Node(e.From).Pos,
			To:       s.g.Node(e.To).Pos,
			FromNode: e.From,
			ToNode:   e.To,
			Behavior: e.Behavior,
			Payload:  e.Payload,
			Cost:     e.Cost,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// edgesToTarget walks the shortest-path tree back from the target.
func (s *Search) edgesToTarget() []*graph.Edge {
	if s.outc != Found || s.target < 0 || s.target >= len(s.f.spt) {
		return nil
	}
	var rev []*graph.Edge
	for nd := s.target; nd != s.source; {
		e := s.f.spt[nd]
		if e == nil {
			return nil
		}
		rev = append(rev, e)
		nd = e.From
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

func (s *Search) checkAdmissibility() {
	total := s.f.cost[s.target]
	for _, n := range s.PathToTarget() {
		remaining := total - s.f.cost[n]
		if est := s.h(s.g, s.target, n); est > remaining+1e-9 {
			s.cfg.logger.Warn("heuristic overestimates remaining cost",
				"algorithm", s.algorithm,
				"node", n,
				"estimate", est,
				"remaining", remaining,
			)
		}
	}
}
