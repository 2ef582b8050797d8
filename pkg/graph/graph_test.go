package graph_test

import (
	"math"
	"testing"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparse_AddEdge(t *testing.T) {
	g := graph.NewSparse()
	a := g.AddNode(domain.Vec2{X: 0, Y: 0}, "")
	b := g.AddNode(domain.Vec2{X: 3, Y: 4}, "health")

	require.NoError(t, g.AddBidirectional(graph.Edge{From: a, To: b, Cost: 5}))
	require.Len(t, g.Edges(a), 1)
	require.Len(t, g.Edges(b), 1)
	assert.Equal(t, domain.BehaviorNormal, g.Edges(a)[0].Behavior)
	assert.Equal(t, a, g.Edges(b)[0].To)

	t.Run("Rejects Bad Data", func(t *testing.T) {
		assert.ErrorIs(t, g.AddEdge(graph.Edge{From: a, To: 9, Cost: 1}), domain.ErrInvalidGraph)
		assert.ErrorIs(t, g.AddEdge(graph.Edge{From: a, To: b, Cost: -1}), domain.ErrInvalidGraph)
		assert.ErrorIs(t, g.AddEdge(graph.Edge{From: a, To: b, Cost: math.Inf(1)}), domain.ErrInvalidGraph)
		assert.ErrorIs(t, g.AddEdge(graph.Edge{From: a, To: b, Cost: 1, Behavior: "fly"}), domain.ErrUnknownBehavior)
	})
}

func TestHeuristics(t *testing.T) {
	g := graph.NewSparse()
	g.AddNode(domain.Vec2{X: 0, Y: 0}, "")
	g.AddNode(domain.Vec2{X: 3, Y: 4}, "")

	assert.InDelta(t, 5.0, graph.Euclid(g, 1, 0), 1e-9)
	assert.InDelta(t, 7.0, graph.Manhattan(g, 1, 0), 1e-9)
	assert.Zero(t, graph.Zero(g, 1, 0))
}

func TestClosestNode(t *testing.T) {
	g := graph.NewSparse()
	g.AddNode(domain.Vec2{X: 0, Y: 0}, "")
	g.AddNode(domain.Vec2{X: 10, Y: 0}, "ammo")
	g.AddNode(domain.Vec2{X: 20, Y: 0}, "health")

	assert.Equal(t, 1, graph.ClosestNode(g, domain.Vec2{X: 9}, nil))
	onlyHealth := func(n graph.Node) bool { return n.Item == "health" }
	assert.Equal(t, 2, graph.ClosestNode(g, domain.Vec2{X: 0}, onlyHealth))
	assert.Equal(t, -1, graph.ClosestNode(graph.NewSparse(), domain.Vec2{}, nil))
}
