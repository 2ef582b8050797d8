package tactic_test

import (
	"context"
	"testing"

	"github.com/aretw0/tactic"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond: 0 -> 1 -> 3 costs 2, 0 -> 2 -> 3 costs 5.
func diamond(t *testing.T) graph.Graph {
	t.Helper()
	g := graph.NewSparse()
	g.AddNode(domain.Vec2{X: 0, Y: 0}, "")
	g.AddNode(domain.Vec2{X: 1, Y: 1}, "")
	g.AddNode(domain.Vec2{X: 1, Y: -1}, "")
	g.AddNode(domain.Vec2{X: 2, Y: 0}, "")
	for _, e := range []graph.Edge{
		{From: 0, To: 1, Cost: 1},
		{From: 1, To: 3, Cost: 1},
		{From: 0, To: 2, Cost: 1},
		{From: 2, To: 3, Cost: 4},
	} {
		require.NoError(t, g.AddEdge(e))
	}
	return g
}

func TestFindPath(t *testing.T) {
	g := diamond(t)
	ctx := context.Background()

	for _, algo := range []string{"", "astar", "dijkstra"} {
		t.Run("Algorithm "+algo, func(t *testing.T) {
			res, err := tactic.FindPath(ctx, g, tactic.PathRequest{From: 0, To: 3, Algorithm: algo})
			require.NoError(t, err)
			assert.True(t, res.Found())
			assert.Equal(t, []int{0, 1, 3}, res.Nodes)
			assert.Equal(t, float64(2), res.Cost)
			assert.Len(t, res.Edges, 2)
			assert.Contains(t, res.Visited, 0)
		})
	}

	t.Run("Unreachable", func(t *testing.T) {
		res, err := tactic.FindPath(ctx, g, tactic.PathRequest{From: 3, To: 0})
		require.NoError(t, err)
		assert.False(t, res.Found())
		assert.Equal(t, "not_found", res.Outcome)
		assert.Empty(t, res.Nodes)
	})

	t.Run("Step Limit", func(t *testing.T) {
		res, err := tactic.FindPath(ctx, g, tactic.PathRequest{From: 0, To: 3, MaxSteps: 1})
		require.NoError(t, err)
		assert.Equal(t, "incomplete", res.Outcome)
		assert.Equal(t, 1, res.Steps)
	})

	t.Run("Bad Requests", func(t *testing.T) {
		_, err := tactic.FindPath(ctx, g, tactic.PathRequest{From: 0, To: 7})
		assert.ErrorIs(t, err, domain.ErrInvalidGraph)

		_, err = tactic.FindPath(ctx, g, tactic.PathRequest{From: 0, To: 3, Algorithm: "bfs"})
		assert.ErrorContains(t, err, "unknown algorithm")

		_, err = tactic.FindPath(ctx, g, tactic.PathRequest{From: 0, To: 3, Heuristic: "chebyshev"})
		assert.ErrorContains(t, err, "unknown heuristic")
	})
}

func TestHeuristicByName(t *testing.T) {
	for _, name := range []string{"", "euclid", "manhattan", "zero"} {
		h, err := tactic.HeuristicByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, h)
	}
}
