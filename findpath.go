package tactic

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/search"
)

// PathRequest describes a one-shot search between two graph nodes.
type PathRequest struct {
	From      int    `json:"from"`
	To        int    `json:"to"`
	Algorithm string `json:"algorithm,omitempty"`
	// Heuristic is euclid (default), manhattan or zero. Ignored by Dijkstra.
	Heuristic string `json:"heuristic,omitempty"`
	// MaxSteps bounds the search; zero means unbounded.
	MaxSteps int `json:"max_steps,omitempty"`
}

// PathResult is the outcome of a one-shot search.
type PathResult struct {
	Algorithm string            `json:"algorithm"`
	Outcome   string            `json:"outcome"`
	Source    int               `json:"source"`
	Target    int               `json:"target"`
	Nodes     []int             `json:"nodes"`
	Edges     []search.PathEdge `json:"edges"`
	Cost      float64           `json:"cost"`
	Steps     int               `json:"steps"`
	// Visited lists the nodes frozen into the shortest-path tree.
	Visited []int `json:"visited"`
}

// Found reports whether a path was established.
func (r *PathResult) Found() bool { return r.Outcome == search.Found.String() }

func (r *PathResult) event(at time.Time) *domain.SearchEvent {
	return &domain.SearchEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventSearchResolve},
		Algorithm: r.Algorithm,
		Outcome:   r.Outcome,
		Steps:     r.Steps,
		Cost:      r.Cost,
		Source:    r.Source,
		Target:    r.Target,
	}
}

// HeuristicByName resolves a heuristic name. Empty means euclid.
func HeuristicByName(name string) (graph.Heuristic, error) {
	switch name {
	case "", "euclid":
		return graph.Euclid, nil
	case "manhattan":
		return graph.Manhattan, nil
	case "zero":
		return graph.Zero, nil
	}
	return nil, fmt.Errorf("unknown heuristic %q", name)
}

// FindPath runs req to completion on g.
func FindPath(ctx context.Context, g graph.Graph, req PathRequest) (*PathResult, error) {
	for _, n := range []int{req.From, req.To} {
		if n < 0 || n >= g.NodeCount() {
			return nil, fmt.Errorf("%w: node %d out of range", domain.ErrInvalidGraph, n)
		}
	}

	var s *search.Search
	switch search.Algorithm(req.Algorithm) {
	case "", search.AlgorithmAStar:
		h, err := HeuristicByName(req.Heuristic)
		if err != nil {
			return nil, err
		}
		s = search.NewAStar(g, req.From, req.To, h)
	case search.AlgorithmDijkstra:
		s = search.NewDijkstra(g, req.From, req.To)
	default:
		return nil, fmt.Errorf("unknown algorithm %q", req.Algorithm)
	}

	out, err := s.Run(ctx, req.MaxSteps)
	if err != nil {
		return nil, err
	}

	res := &PathResult{
		Algorithm: string(s.Algorithm()),
		Outcome:   out.String(),
		Source:    s.Source(),
		Target:    s.Target(),
		Nodes:     s.PathToTarget(),
		Edges:     s.PathAsEdges(),
		Cost:      s.CostToTarget(),
		Steps:     s.Steps(),
	}
	for n, e := range s.SPT() {
		if e != nil || (n == s.Source() && s.Steps() > 0) {
			res.Visited = append(res.Visited, n)
		}
	}
	return res, nil
}
