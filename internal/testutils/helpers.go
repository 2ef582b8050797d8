package testutils

import (
	"sync"
	"time"

	"github.com/aretw0/tactic/pkg/domain"
)

// Agent is a scriptable ports.Agent for tests. Movement is instantaneous:
// the agent only moves when a test sets Pos.
type Agent struct {
	Name      string
	Pos       domain.Vec2
	Target    domain.Vec2
	Modes     map[domain.Steering]bool
	HP, MaxHP float64
	Manual    bool

	// Speed in units per second drives TimeToReach.
	Speed float64
	// Blocked lists segments that fail CanWalkBetween and line of sight, keyed by endpoints.
	Blocked map[[2]domain.Vec2]bool
	// NoSight disables line of sight everywhere.
	NoSight bool
}

// NewAgent creates an agent at pos with full health and speed 1.
func NewAgent(name string, pos domain.Vec2) *Agent {
	return &Agent{
		Name:  name,
		Pos:   pos,
		Modes: make(map[domain.Steering]bool),
		HP:    100,
		MaxHP: 100,
		Speed: 1,
	}
}

func (a *Agent) ID() string { return a.Name }

func (a *Agent) Position() domain.Vec2 { return a.Pos }

func (a *Agent) SetSeekTarget(p domain.Vec2) { a.Target = p }

func (a *Agent) SetBehavior(mode domain.Steering, on bool) {
	a.Modes[mode] = on
}

func (a *Agent) TimeToReach(pos domain.Vec2) time.Duration {
	return time.Duration(domain.Distance(a.Pos, pos) / a.Speed * float64(time.Second))
}

func (a *Agent) AtPosition(pos domain.Vec2) bool {
	return domain.Distance(a.Pos, pos) < 0.01
}

func (a *Agent) HasLineOfSight(pos domain.Vec2) bool {
	return !a.NoSight && a.CanWalkBetween(a.Pos, pos)
}

func (a *Agent) CanWalkBetween(from, to domain.Vec2) bool {
	if a.Blocked == nil {
		return true
	}
	return !a.Blocked[[2]domain.Vec2{from, to}] && !a.Blocked[[2]domain.Vec2{to, from}]
}

func (a *Agent) Health() float64    { return a.HP }
func (a *Agent) MaxHealth() float64 { return a.MaxHP }
func (a *Agent) Possessed() bool    { return a.Manual }

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at a fixed instant so tests are reproducible.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
