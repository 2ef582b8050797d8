package search_test

import (
	"bytes"
	"container/heap"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleGraph: 0->1(1), 1->2(1), 0->2(5), 2->3(1), 3->4(1)
func exampleGraph(t *testing.T) *graph.Sparse {
	t.Helper()
	g := graph.NewSparse()
	for i := 0; i < 5; i++ {
		g.AddNode(domain.Vec2{X: float64(i)}, "")
	}
	for _, e := range []graph.Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 1, To: 2, Cost: 1},
		{From: 0, To: 2, Cost: 5},
		{From: 2, To: 3, Cost: 1},
		{From: 3, To: 4, Cost: 1, Behavior: domain.BehaviorJump, Payload: 7},
	} {
		require.NoError(t, g.AddEdge(e))
	}
	return g
}

// gridGraph builds a w*h 4-connected grid with unit spacing and unit costs.
func gridGraph(t *testing.T, w, h int) *graph.Sparse {
	t.Helper()
	g := graph.NewSparse()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.AddNode(domain.Vec2{X: float64(x), Y: float64(y)}, "")
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if x+1 < w {
				require.NoError(t, g.AddBidirectional(graph.Edge{From: i, To: i + 1, Cost: 1}))
			}
			if y+1 < h {
				require.NoError(t, g.AddBidirectional(graph.Edge{From: i, To: i + w, Cost: 1}))
			}
		}
	}
	return g
}

func runToEnd(t *testing.T, s *search.Search) search.Outcome {
	t.Helper()
	out, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	return out
}

func TestDijkstra_ExampleScenario(t *testing.T) {
	g := exampleGraph(t)
	s := search.NewDijkstra(g, 0, 4)

	var out search.Outcome
	steps := 0
	for out = s.Step(); out == search.Incomplete; out = s.Step() {
		steps++
		require.Less(t, steps, 100, "search did not resolve")
	}

	require.Equal(t, search.Found, out)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.PathToTarget())
	assert.InDelta(t, 4.0, s.CostToTarget(), 1e-9)

	edges := s.PathAsEdges()
	require.Len(t, edges, 4)
	last := edges[3]
	assert.Equal(t, domain.BehaviorJump, last.Behavior)
	assert.Equal(t, 7, last.Payload)
	assert.Equal(t, domain.Vec2{X: 3}, last.From)
	assert.Equal(t, domain.Vec2{X: 4}, last.To)

	t.Run("Terminal Outcome Is Sticky", func(t *testing.T) {
		frozen := s.Frozen()
		assert.Equal(t, search.Found, s.Step())
		assert.Equal(t, frozen, s.Frozen())
	})
}

func TestSearch_NotFound(t *testing.T) {
	g := exampleGraph(t)
	// edges are one-way, so 4 cannot reach 0
	for _, s := range []*search.Search{
		search.NewDijkstra(g, 4, 0),
		search.NewAStar(g, 4, 0, graph.Euclid),
	} {
		assert.Equal(t, search.NotFound, runToEnd(t, s))
		assert.Nil(t, s.PathToTarget())
		assert.Nil(t, s.PathAsEdges())
		assert.Zero(t, s.CostToTarget())
		assert.Equal(t, search.NotFound, s.Step())
	}
}

func TestSearch_UnsetTarget(t *testing.T) {
	g := exampleGraph(t)

	a := search.NewAStar(g, 0, -1, graph.Euclid)
	assert.Equal(t, search.NotFound, a.Step())
	assert.Empty(t, a.PathToTarget())

	d := search.NewDijkstra(g, 0, -1)
	assert.Equal(t, search.NotFound, runToEnd(t, d))
	assert.Empty(t, d.PathAsEdges())
	assert.Equal(t, 5, d.Frozen(), "every reachable node is finalized")
}

func TestSearch_SourceIsTarget(t *testing.T) {
	g := exampleGraph(t)
	s := search.NewAStar(g, 2, 2, graph.Euclid)
	assert.Equal(t, search.Found, s.Step())
	assert.Equal(t, []int{2}, s.PathToTarget())
	assert.Nil(t, s.PathAsEdges())
	assert.Zero(t, s.CostToTarget())
}

// bruteForce returns the cheapest simple-path cost from src to dst.
func bruteForce(g graph.Graph, src, dst int) float64 {
	best := math.Inf(1)
	visited := make([]bool, g.NodeCount())
	var walk func(n int, cost float64)
	walk = func(n int, cost float64) {
		if n == dst {
			best = math.Min(best, cost)
			return
		}
		visited[n] = true
		for _, e := range g.Edges(n) {
			if !visited[e.To] {
				walk(e.To, cost+e.Cost)
			}
		}
		visited[n] = false
	}
	walk(src, 0)
	return best
}

func TestDijkstra_MatchesBruteForce(t *testing.T) {
	g := graph.NewSparse()
	for i := 0; i < 5; i++ {
		g.AddNode(domain.Vec2{X: float64(i), Y: float64(i * i)}, "")
	}
	costs := []float64{1, 2, 3, 4, 5}
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if i != j {
				require.NoError(t, g.AddEdge(graph.Edge{From: i, To: j, Cost: costs[(i*3+j*2)%5]}))
			}
		}
	}

	for src := 0; src < 5; src++ {
		for dst := 0; dst < 5; dst++ {
			d := search.NewDijkstra(g, src, dst)
			require.Equal(t, search.Found, runToEnd(t, d))
			assert.InDelta(t, bruteForce(g, src, dst), d.CostToTarget(), 1e-9, "%d->%d", src, dst)

			a := search.NewAStar(g, src, dst, graph.Zero)
			require.Equal(t, search.Found, runToEnd(t, a))
			assert.Equal(t, d.PathToTarget(), a.PathToTarget(), "%d->%d", src, dst)
			assert.Equal(t, d.CostToTarget(), a.CostToTarget())
			assert.Equal(t, d.Frozen(), a.Frozen())
		}
	}
}

func TestAStar_AdmissibleHeuristicFreezesNoMore(t *testing.T) {
	g := gridGraph(t, 10, 10)
	for _, q := range [][2]int{{0, 99}, {5, 94}, {45, 9}, {11, 88}} {
		d := search.NewDijkstra(g, q[0], q[1])
		a := search.NewAStar(g, q[0], q[1], graph.Manhattan)
		require.Equal(t, search.Found, runToEnd(t, d))
		require.Equal(t, search.Found, runToEnd(t, a))

		assert.InDelta(t, d.CostToTarget(), a.CostToTarget(), 1e-9)
		assert.LessOrEqual(t, a.Frozen(), d.Frozen(), "query %v", q)
	}
}

type refItem struct {
	node int
	dist float64
}

type refQueue []refItem

func (q refQueue) Len() int           { return len(q) }
func (q refQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q refQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *refQueue) Push(x any)        { *q = append(*q, x.(refItem)) }
func (q *refQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// referenceDistances is a single-shot lazy-deletion Dijkstra.
func referenceDistances(g graph.Graph, src int) []float64 {
	dist := make([]float64, g.NodeCount())
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[src] = 0
	q := &refQueue{{src, 0}}
	for q.Len() > 0 {
		it := heap.Pop(q).(refItem)
		if it.dist > dist[it.node] {
			continue
		}
		for _, e := range g.Edges(it.node) {
			if nd := it.dist + e.Cost; nd < dist[e.To] {
				dist[e.To] = nd
				heap.Push(q, refItem{e.To, nd})
			}
		}
	}
	return dist
}

func sptCost(spt []*graph.Edge, node int) float64 {
	total := 0.0
	for e := spt[node]; e != nil; e = spt[e.From] {
		total += e.Cost
	}
	return total
}

func TestSearch_IncrementalMatchesSingleShot(t *testing.T) {
	g := gridGraph(t, 6, 6)
	// make some edges expensive so relaxation revises frontier costs
	require.NoError(t, g.AddEdge(graph.Edge{From: 0, To: 35, Cost: 100}))
	require.NoError(t, g.AddEdge(graph.Edge{From: 0, To: 20, Cost: 3}))

	stepped := search.NewDijkstra(g, 0, 35)
	other := search.NewAStar(g, 35, 0, graph.Euclid)
	for !stepped.Outcome().Terminal() {
		stepped.Step()
		other.Step() // interleaved work must not disturb the first search
	}
	oneShot := search.NewDijkstra(g, 0, 35)
	require.Equal(t, search.Found, runToEnd(t, oneShot))

	require.Equal(t, search.Found, stepped.Outcome())
	assert.Equal(t, oneShot.SPT(), stepped.SPT())
	assert.Equal(t, oneShot.CostToTarget(), stepped.CostToTarget())

	ref := referenceDistances(g, 0)
	spt := stepped.SPT()
	for n, e := range spt {
		if e == nil {
			continue
		}
		assert.InDelta(t, ref[n], sptCost(spt, n), 1e-9, "node %d", n)
	}
	assert.InDelta(t, ref[35], stepped.CostToTarget(), 1e-9)
}

func TestDijkstra_ReachItem(t *testing.T) {
	g := graph.NewSparse()
	g.AddNode(domain.Vec2{}, "")
	g.AddNode(domain.Vec2{X: 1}, "health")
	g.AddNode(domain.Vec2{X: 2}, "health")
	g.AddNode(domain.Vec2{X: 3}, "")
	require.NoError(t, g.AddBidirectional(graph.Edge{From: 0, To: 1, Cost: 1}))
	require.NoError(t, g.AddBidirectional(graph.Edge{From: 0, To: 3, Cost: 1}))
	require.NoError(t, g.AddBidirectional(graph.Edge{From: 3, To: 2, Cost: 1}))

	t.Run("Nearest Active Item", func(t *testing.T) {
		s := search.NewDijkstra(g, 0, -1, search.WithTermination(search.ReachItem("health", nil)))
		require.Equal(t, search.Found, runToEnd(t, s))
		assert.Equal(t, 1, s.Target())
		assert.Equal(t, []int{0, 1}, s.PathToTarget())
	})

	t.Run("Skips Inactive Item", func(t *testing.T) {
		active := func(n int) bool { return n != 1 }
		s := search.NewDijkstra(g, 0, -1, search.WithTermination(search.ReachItem("health", active)))
		require.Equal(t, search.Found, runToEnd(t, s))
		assert.Equal(t, 2, s.Target())
		assert.Equal(t, []int{0, 3, 2}, s.PathToTarget())
		assert.InDelta(t, 2.0, s.CostToTarget(), 1e-9)
	})

	t.Run("No Item", func(t *testing.T) {
		s := search.NewDijkstra(g, 0, -1, search.WithTermination(search.ReachItem("ammo", nil)))
		assert.Equal(t, search.NotFound, runToEnd(t, s))
	})
}

func TestAStar_AdmissibilityCheck(t *testing.T) {
	g := exampleGraph(t)
	inflated := func(g graph.Graph, target, node int) float64 {
		return 10 * graph.Euclid(g, target, node)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := search.NewAStar(g, 0, 4, inflated, search.WithLogger(logger), search.WithAdmissibilityCheck(true))
	require.Equal(t, search.Found, runToEnd(t, s))
	assert.Contains(t, buf.String(), "heuristic overestimates remaining cost")

	buf.Reset()
	s = search.NewAStar(g, 0, 4, graph.Euclid, search.WithLogger(logger), search.WithAdmissibilityCheck(true))
	require.Equal(t, search.Found, runToEnd(t, s))
	assert.Empty(t, buf.String())
}

func TestSearch_RunHonorsContext(t *testing.T) {
	g := gridGraph(t, 5, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := search.NewDijkstra(g, 0, 24)
	out, err := s.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, search.Incomplete, out)

	out, err = s.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, search.Incomplete, out)
	assert.Equal(t, 3, s.Steps())
}
