package graph

import "github.com/aretw0/tactic/pkg/domain"

// Heuristic estimates the remaining cost from node to target.
// A* finds optimal paths only when it never overestimates.
type Heuristic func(g Graph, target, node int) float64

// Euclid is the straight-line distance between node positions.
func Euclid(g Graph, target, node int) float64 {
	return domain.Distance(g.Node(target).Pos, g.Node(node).Pos)
}

// Manhattan is |dx|+|dy| between node positions.
func Manhattan(g Graph, target, node int) float64 {
	return domain.ManhattanDistance(g.Node(target).Pos, g.Node(node).Pos)
}

// Zero turns A* into Dijkstra.
func Zero(Graph, int, int) float64 { return 0 }
