// Package tactics provides the concrete goals and evaluators agents are built
// from: steering goals at the leaves, path-following composites above them,
// and the top-level strategies an arbitrator chooses between.
package tactics

import (
	"math/rand/v2"
	"time"

	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/pathing"
)

// DefaultStuckMargin is added to the expected travel time before a movement
// goal gives up.
const DefaultStuckMargin = time.Second

// DefaultMaxReplans is how many times MoveToPosition plans again before it fails.
const DefaultMaxReplans = 3

// Goal kinds.
const (
	KindSeekToPosition = "seek_to_position"
	KindTraverseEdge   = "traverse_edge"
	KindFollowPath     = "follow_path"
	KindMoveToPosition = "move_to_position"
	KindWander         = "wander"
	KindExplore        = "explore"
	KindGetItemPrefix  = "get_item:"
)

// WorldReceiver is the dispatcher id of the world itself.
const WorldReceiver = "world"

// KindGetItem returns the goal kind for fetching item.
func KindGetItem(item string) string { return KindGetItemPrefix + item }

// Kit bundles what one agent's goals share beyond the goal Env.
type Kit struct {
	Env     *goal.Env
	Planner *pathing.Planner
	// Sender, when set, receives door requests addressed to WorldReceiver.
	Sender pathing.Sender

	// StuckMargin is the slack allowed on top of Agent.TimeToReach.
	StuckMargin time.Duration
	// MaxReplans bounds replanning in MoveToPosition. Zero fails on the first stall.
	MaxReplans int
	// Rand picks exploration targets.
	Rand *rand.Rand
	// Tick reports the current world tick, if known.
	Tick func() uint64
}

// NewKit creates a kit with the default stuck margin and a seeded source.
func NewKit(env *goal.Env, planner *pathing.Planner, seed uint64) *Kit {
	return &Kit{
		Env:         env,
		Planner:     planner,
		StuckMargin: DefaultStuckMargin,
		MaxReplans:  DefaultMaxReplans,
		Rand:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Tick:        func() uint64 { return 0 },
	}
}

func (k *Kit) expectedBy(start time.Time, eta time.Duration) time.Time {
	return start.Add(eta + k.StuckMargin)
}
