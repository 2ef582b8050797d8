package validator

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/registry"
	"github.com/aretw0/tactic/pkg/scenario"
)

// Report lists everything wrong with a scenario. Errors make it unusable;
// warnings do not.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the scenario can be run.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Err returns nil when there are no errors, otherwise one error listing them all.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrInvalidGraph, len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// Validate checks edges, agents and evaluators, and crawls the graph from
// every agent start to flag nodes no agent can reach.
func Validate(s *scenario.Scenario, reg *registry.Registry) Report {
	var r Report
	nodes := len(s.Graph.Nodes)
	if nodes == 0 {
		r.Errors = append(r.Errors, "graph has no nodes")
	}

	adj := make([][]int, nodes)
	for i, e := range s.Graph.Edges {
		ok := true
		if e.From < 0 || e.From >= nodes {
			r.Errors = append(r.Errors, fmt.Sprintf("edge %d: from node %d does not exist", i, e.From))
			ok = false
		}
		if e.To < 0 || e.To >= nodes {
			r.Errors = append(r.Errors, fmt.Sprintf("edge %d: to node %d does not exist", i, e.To))
			ok = false
		}
		if e.Cost < 0 || math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) {
			r.Errors = append(r.Errors, fmt.Sprintf("edge %d: cost %v is not a finite non-negative number", i, e.Cost))
		}
		if _, err := domain.ParseBehavior(e.Behavior); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("edge %d: unknown behavior %q", i, e.Behavior))
		}
		if ok {
			adj[e.From] = append(adj[e.From], e.To)
			if e.Bidirectional {
				adj[e.To] = append(adj[e.To], e.From)
			}
		}
	}

	seen := make(map[string]bool)
	var starts []int
	for i, a := range s.Agents {
		name := a.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if seen[a.ID] {
			r.Errors = append(r.Errors, fmt.Sprintf("agent %s: duplicate id", name))
		}
		seen[a.ID] = true

		if a.Start < 0 || a.Start >= nodes {
			r.Errors = append(r.Errors, fmt.Sprintf("agent %s: start node %d does not exist", name, a.Start))
		} else {
			starts = append(starts, a.Start)
		}
		if a.Speed <= 0 {
			r.Errors = append(r.Errors, fmt.Sprintf("agent %s: speed must be positive", name))
		}
		if a.Health > a.MaxHealth {
			r.Warnings = append(r.Warnings, fmt.Sprintf("agent %s: health %v exceeds max_health %v", name, a.Health, a.MaxHealth))
		}
		if len(a.Evaluators) == 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("agent %s: no evaluators, it will stay idle", name))
		}
		for _, ev := range a.Evaluators {
			if !reg.Has(ev.Kind) {
				r.Errors = append(r.Errors, fmt.Sprintf("agent %s: unknown evaluator kind %q", name, ev.Kind))
			}
		}
	}

	switch s.Search.Algorithm {
	case "", "astar", "dijkstra":
	default:
		r.Errors = append(r.Errors, fmt.Sprintf("search: unknown algorithm %q", s.Search.Algorithm))
	}
	switch s.Search.Smoothing {
	case "", "none", "quick", "precise":
	default:
		r.Errors = append(r.Errors, fmt.Sprintf("search: unknown smoothing %q", s.Search.Smoothing))
	}
	if s.Search.CyclesPerTick < 0 {
		r.Errors = append(r.Errors, "search: cycles_per_tick must not be negative")
	}
	if s.ArbitrateEvery < 0 {
		r.Errors = append(r.Errors, "arbitrate_every must not be negative")
	}
	if s.MaxReplans != nil && *s.MaxReplans < 0 {
		r.Errors = append(r.Errors, "max_replans must not be negative")
	}
	if s.StuckMargin != "" {
		if _, err := time.ParseDuration(s.StuckMargin); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("stuck_margin: %v", err))
		}
	}

	if _, err := s.Tick(time.Second); err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
	if s.World.RespawnTicks < 0 {
		r.Errors = append(r.Errors, "world: respawn_ticks must not be negative")
	}

	if len(starts) > 0 {
		visited := crawl(adj, starts)
		for i := 0; i < nodes; i++ {
			if !visited[i] {
				r.Warnings = append(r.Warnings, fmt.Sprintf("node %d is unreachable from every agent start", i))
			}
		}
	}
	return r
}

func crawl(adj [][]int, starts []int) []bool {
	visited := make([]bool, len(adj))
	queue := append([]int(nil), starts...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, next := range adj[cur] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return visited
}
