package pathing

import (
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/search"
)

// Walker answers whether a straight segment is free of obstacles.
type Walker interface {
	CanWalkBetween(a, b domain.Vec2) bool
}

// SmoothQuick merges each run of consecutive normal edges greedily: an edge is
// folded into the previous one while the agent can walk straight from the
// start of the run to its end.
func SmoothQuick(w Walker, path []search.PathEdge) []search.PathEdge {
	if len(path) < 2 {
		return path
	}
	out := []search.PathEdge{path[0]}
	for _, e := range path[1:] {
		last := &out[len(out)-1]
		if mergeable(*last, e) && w.CanWalkBetween(last.From, e.To) {
			last.To, last.ToNode = e.To, e.ToNode
			last.Cost += e.Cost
			continue
		}
		out = append(out, e)
	}
	return out
}

// SmoothPrecise tries every later edge for each start edge, so it can skip
// over corners SmoothQuick keeps. Only runs of normal edges are merged.
func SmoothPrecise(w Walker, path []search.PathEdge) []search.PathEdge {
	if len(path) < 2 {
		return path
	}
	var out []search.PathEdge
	for i := 0; i < len(path); {
		cur := path[i]
		next := i + 1
		for j := i + 1; j < len(path); j++ {
			if !mergeable(path[j-1], path[j]) || !mergeable(cur, path[j]) {
				break
			}
			if w.CanWalkBetween(cur.From, path[j].To) {
				next = j + 1
			}
		}
		for k := i + 1; k < next; k++ {
			cur.To, cur.ToNode = path[k].To, path[k].ToNode
			cur.Cost += path[k].Cost
		}
		out = append(out, cur)
		i = next
	}
	return out
}

func mergeable(a, b search.PathEdge) bool {
	return a.Behavior == domain.BehaviorNormal && b.Behavior == domain.BehaviorNormal
}
