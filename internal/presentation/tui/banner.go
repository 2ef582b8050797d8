package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/tactic/pkg/domain"
)

// PrintBanner outputs the ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _             _   _      ", "#34d399"},
		{" | |_ __ _  ___| |_(_) ___ ", "#2dd4bf"},
		{" | __/ _` |/ __| __| |/ __|", "#22d3ee"},
		{" | || (_| | (__| |_| | (__ ", "#38bdf8"},
		{"  \\__\\__,_|\\___|\\__|_|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusString colors a goal status for terminal output.
func StatusString(s domain.Status) termenv.Style {
	p := termenv.ColorProfile()
	out := termenv.String(s.String())
	switch s {
	case domain.StatusCompleted:
		return out.Foreground(p.Color("#22c55e"))
	case domain.StatusFailed:
		return out.Foreground(p.Color("#ef4444")).Bold()
	case domain.StatusActive:
		return out.Foreground(p.Color("#eab308"))
	}
	return out.Faint()
}
