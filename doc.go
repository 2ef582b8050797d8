/*
Package tactic schedules autonomous agents with hierarchical goals and
time-sliced path search.

Each agent owns a goal tree rooted at an arbitrator ("think") that scores a
set of evaluators and installs the winner's goal. Goals decompose into
subgoals down to steering primitives. Path requests are served by A* or
Dijkstra searches that advance a bounded number of steps per tick, so many
agents can plan at once without stalling the world.

# Usage

Load a scenario and advance it:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/tactic"
		"github.com/aretw0/tactic/pkg/scenario"
	)

	func main() {
		s, err := scenario.Load("arena.yaml")
		if err != nil {
			log.Fatal(err)
		}
		sched, err := tactic.New(s)
		if err != nil {
			log.Fatal(err)
		}
		if err := sched.Run(context.Background(), 100); err != nil {
			log.Fatal(err)
		}
		for _, snap := range sched.Snapshots() {
			log.Println(snap.AgentID, snap.Position, snap.Goals)
		}
	}

Observability is wired through domain.LifecycleHooks (see WithLifecycleHooks)
and persistence through ports.SnapshotStore (see WithStore).
*/
package tactic
