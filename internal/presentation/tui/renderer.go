package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/tactic/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Print writes markdown to w, rendered with glamour when styled is set.
func Print(w io.Writer, markdown string, styled bool) error {
	if styled {
		out, err := NewRenderer()(markdown)
		if err == nil {
			markdown = out
		}
	}
	_, err := io.WriteString(w, markdown)
	return err
}

// Report builds the end-of-run markdown summary.
func Report(name string, tick uint64, snaps []*domain.Snapshot, items map[int]bool) string {
	var sb strings.Builder
	title := "Run report"
	if name != "" {
		title = fmt.Sprintf("Run report: %s", name)
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Completed **%d** ticks.\n\n", tick)

	sb.WriteString("| Agent | Position | Health | Last evaluator | Goals |\n")
	sb.WriteString("|-------|----------|--------|----------------|-------|\n")
	for _, s := range snaps {
		kinds := make([]string, 0, len(s.Goals))
		for _, g := range s.Goals {
			kinds = append(kinds, g.Kind)
		}
		goals := strings.Join(kinds, " > ")
		if goals == "" {
			goals = "-"
		}
		last := s.LastEvaluator
		if last == "" {
			last = "-"
		} else {
			last = fmt.Sprintf("%s (%.3f)", last, s.LastScore)
		}
		who := s.AgentID
		if s.Possessed {
			who += " (possessed)"
		}
		fmt.Fprintf(&sb, "| %s | (%.2f, %.2f) | %.0f | %s | %s |\n",
			who, s.Position.X, s.Position.Y, s.Health, last, goals)
	}

	if len(items) > 0 {
		sb.WriteString("\n## Items\n\n")
		nodes := make([]int, 0, len(items))
		for n := range items {
			nodes = append(nodes, n)
		}
		sort.Ints(nodes)
		for _, n := range nodes {
			state := "available"
			if !items[n] {
				state = "respawning"
			}
			fmt.Fprintf(&sb, "- node %d: %s\n", n, state)
		}
	}
	return sb.String()
}
