package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/tactic/pkg/domain"
	nav "github.com/aretw0/tactic/pkg/graph"
)

// Overlay contains search or agent state to visualize on the graph.
type Overlay struct {
	// Visited nodes were expanded by a search.
	Visited []int
	// Path is the node sequence of a found path, source first.
	Path []int
	// Agents maps a node to the agents standing closest to it.
	Agents map[int][]string
}

// GenerateMermaid produces a Mermaid flowchart of a navigation graph.
// It applies semantic styling:
// - Item nodes: ((Circle)) labeled with the item
// - Plain nodes: [Rectangle] labeled with the index and position
// - Normal edges: solid arrows labeled with the cost
// - Special edges (door, jump, ...): dotted arrows labeled with behavior and cost
// Edges along the overlay path are drawn thick.
func GenerateMermaid(g nav.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	onPath := make(map[[2]int]bool)
	if overlay != nil {
		for i := 1; i < len(overlay.Path); i++ {
			onPath[[2]int{overlay.Path[i-1], overlay.Path[i]}] = true
		}
	}

	for i := 0; i < g.NodeCount(); i++ {
		n := g.Node(i)
		label := fmt.Sprintf("%d (%g, %g)", i, n.Pos.X, n.Pos.Y)
		opener, closer := "[", "]"
		if n.Item != "" {
			opener, closer = "((", "))"
			label = fmt.Sprintf("%d %s", i, n.Item)
		}
		if overlay != nil {
			if who := overlay.Agents[i]; len(who) > 0 {
				label += " <br/> " + strings.Join(who, ", ")
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", nodeID(i), opener, escape(label), closer))
	}

	for i := 0; i < g.NodeCount(); i++ {
		for _, e := range g.Edges(i) {
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", nodeID(e.From), arrow(e, onPath[[2]int{e.From, e.To}]), nodeID(e.To)))
		}
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for contrast regardless of theme
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef path fill:#c8e6c9,stroke:#1b5e20,stroke-width:3px,color:#000;\n")
	sb.WriteString("    classDef agent fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	styled := make(map[int]bool)
	for _, n := range overlay.Path {
		if !styled[n] && valid(g, n) {
			styled[n] = true
			sb.WriteString(fmt.Sprintf("    class %s path;\n", nodeID(n)))
		}
	}
	for _, n := range overlay.Visited {
		if !styled[n] && valid(g, n) {
			styled[n] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", nodeID(n)))
		}
	}

	occupied := make([]int, 0, len(overlay.Agents))
	for n := range overlay.Agents {
		if valid(g, n) {
			occupied = append(occupied, n)
		}
	}
	sort.Ints(occupied)
	for _, n := range occupied {
		sb.WriteString(fmt.Sprintf("    class %s agent;\n", nodeID(n)))
	}

	return sb.String()
}

func arrow(e nav.Edge, thick bool) string {
	label := fmt.Sprintf("%g", e.Cost)
	if e.Behavior != "" && e.Behavior != domain.BehaviorNormal {
		label = fmt.Sprintf("%s %g", e.Behavior, e.Cost)
		if thick {
			return fmt.Sprintf("== \"%s\" ==>", label)
		}
		return fmt.Sprintf("-. \"%s\" .->", label)
	}
	if thick {
		return fmt.Sprintf("== \"%s\" ==>", label)
	}
	return fmt.Sprintf("-- \"%s\" -->", label)
}

func nodeID(i int) string { return fmt.Sprintf("n%d", i) }

func valid(g nav.Graph, n int) bool { return n >= 0 && n < g.NodeCount() }

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// AgentNodes places each snapshot on the graph node closest to it.
func AgentNodes(g nav.Graph, snaps []*domain.Snapshot) map[int][]string {
	out := make(map[int][]string)
	for _, s := range snaps {
		best, bestDist := -1, 0.0
		for i := 0; i < g.NodeCount(); i++ {
			d := domain.Distance(s.Position, g.Node(i).Pos)
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			out[best] = append(out[best], s.AgentID)
		}
	}
	return out
}
