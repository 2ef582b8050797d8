package search

import (
	"math"

	"github.com/aretw0/tactic/pkg/graph"
)

// frontier is the per-node bookkeeping shared by A* and Dijkstra.
type frontier struct {
	cost []float64 // best cost from source found so far, +Inf until touched
	key  []float64 // priority: cost for Dijkstra, cost+h for A*
	seen []bool    // node has been placed on the frontier at least once

	bestIncoming []*graph.Edge // edge on the current best-known path
	spt          []*graph.Edge // frozen incoming edge; nil for the source
	frozen       []bool
}

func newFrontier(n int) *frontier {
	f := &frontier{
		cost:         make([]float64, n),
		key:          make([]float64, n),
		seen:         make([]bool, n),
		bestIncoming: make([]*graph.Edge, n),
		spt:          make([]*graph.Edge, n),
		frozen:       make([]bool, n),
	}
	for i := range f.cost {
		f.cost[i] = math.Inf(1)
		f.key[i] = math.Inf(1)
	}
	return f
}

// freeze moves a node's best incoming edge into the shortest-path tree.
func (f *frontier) freeze(n int) {
	f.spt[n] = f.bestIncoming[n]
	f.frozen[n] = true
}
