// Package graph defines the read-only navigation graph consumed by path search.
package graph

import (
	"fmt"
	"math"

	"github.com/aretw0/tactic/pkg/domain"
)

// Node is a navigation point.
type Node struct {
	Index int         `json:"index"`
	Pos   domain.Vec2 `json:"pos"`
	// Item tags a node holding a pickup or trigger ("health", "ammo"). Empty for plain nodes.
	Item string `json:"item,omitempty"`
}

// Edge is a directed, weighted connection between two nodes.
type Edge struct {
	From     int             `json:"from"`
	To       int             `json:"to"`
	Cost     float64         `json:"cost"`
	Behavior domain.Behavior `json:"behavior"`
	// Payload carries behavior-specific data, such as a door ID.
	Payload int `json:"payload,omitempty"`
}

// Graph is the capability set search needs from a navigation graph.
// Implementations must not change while a search over them is running.
type Graph interface {
	NodeCount() int
	Node(i int) Node
	Edges(from int) []Edge
}

// Sparse is an adjacency-list Graph.
type Sparse struct {
	nodes []Node
	edges [][]Edge
}

// NewSparse creates an empty graph.
func NewSparse() *Sparse {
	return &Sparse{}
}

// AddNode appends a node and returns its index.
func (g *Sparse) AddNode(pos domain.Vec2, item string) int {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Index: idx, Pos: pos, Item: item})
	g.edges = append(g.edges, nil)
	return idx
}

// AddEdge validates and stores a directed edge.
func (g *Sparse) AddEdge(e Edge) error {
	if e.From < 0 || e.From >= len(g.nodes) || e.To < 0 || e.To >= len(g.nodes) {
		return fmt.Errorf("%w: edge %d->%d references a missing node", domain.ErrInvalidGraph, e.From, e.To)
	}
	if e.Cost < 0 || math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) {
		return fmt.Errorf("%w: edge %d->%d has cost %v", domain.ErrInvalidGraph, e.From, e.To, e.Cost)
	}
	if e.Behavior == "" {
		e.Behavior = domain.BehaviorNormal
	}
	if _, err := domain.SteeringFor(e.Behavior); err != nil {
		return fmt.Errorf("edge %d->%d: %w", e.From, e.To, err)
	}
	g.edges[e.From] = append(g.edges[e.From], e)
	return nil
}

// AddBidirectional adds e and its reverse with the same cost and behavior.
func (g *Sparse) AddBidirectional(e Edge) error {
	if err := g.AddEdge(e); err != nil {
		return err
	}
	e.From, e.To = e.To, e.From
	return g.AddEdge(e)
}

func (g *Sparse) NodeCount() int { return len(g.nodes) }

func (g *Sparse) Node(i int) Node { return g.nodes[i] }

func (g *Sparse) Edges(from int) []Edge { return g.edges[from] }

// Nodes returns every node in index order.
func Nodes(g Graph) []Node {
	out := make([]Node, g.NodeCount())
	for i := range out {
		out[i] = g.Node(i)
	}
	return out
}

// ClosestNode returns the node nearest to pos for which accept returns true,
// or -1 when none qualifies. A nil accept matches every node.
func ClosestNode(g Graph, pos domain.Vec2, accept func(Node) bool) int {
	best, bestDist := -1, math.Inf(1)
	for i := 0; i < g.NodeCount(); i++ {
		n := g.Node(i)
		if accept != nil && !accept(n) {
			continue
		}
		if d := domain.Distance(n.Pos, pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
