package ports

import (
	"time"

	"github.com/aretw0/tactic/pkg/domain"
)

// Agent is the owner a goal reads from and steers.
// Goals borrow the agent; they never outlive it.
type Agent interface {
	// ID identifies the agent in logs, messages and snapshots.
	ID() string
	Position() domain.Vec2

	// SetSeekTarget sets the point movement behaviors steer towards.
	SetSeekTarget(domain.Vec2)
	// SetBehavior switches a movement mode on or off.
	SetBehavior(mode domain.Steering, on bool)

	// TimeToReach estimates how long the agent needs to reach pos from where it stands.
	TimeToReach(pos domain.Vec2) time.Duration
	// AtPosition reports whether the agent is close enough to pos to count as arrived.
	AtPosition(pos domain.Vec2) bool

	HasLineOfSight(pos domain.Vec2) bool
	// CanWalkBetween reports whether the straight segment a-b is free of obstacles.
	CanWalkBetween(a, b domain.Vec2) bool

	Health() float64
	MaxHealth() float64

	// Possessed is true while the agent is under manual control, which
	// suspends arbitration.
	Possessed() bool
}
