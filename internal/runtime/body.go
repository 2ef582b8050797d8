package runtime

import (
	"time"

	"github.com/aretw0/tactic/pkg/domain"
)

// Body is a simulated agent. It implements ports.Agent.
type Body struct {
	id        string
	pos       domain.Vec2
	target    domain.Vec2
	speed     float64
	health    float64
	maxHealth float64
	possessed bool
	modes     map[domain.Steering]bool
	world     *World
}

func (b *Body) ID() string { return b.id }

func (b *Body) Position() domain.Vec2 { return b.pos }

func (b *Body) SetSeekTarget(p domain.Vec2) { b.target = p }

// SeekTarget returns the last point the body was told to head for.
func (b *Body) SeekTarget() domain.Vec2 { return b.target }

func (b *Body) SetBehavior(mode domain.Steering, on bool) {
	if on {
		b.modes[mode] = true
		return
	}
	delete(b.modes, mode)
}

// Steering reports whether mode is switched on.
func (b *Body) Steering(mode domain.Steering) bool { return b.modes[mode] }

// TimeToReach is the straight-line travel time at base speed. A body that
// cannot move reports zero, so movement goals give up after their margin.
func (b *Body) TimeToReach(pos domain.Vec2) time.Duration {
	if b.speed <= 0 {
		return 0
	}
	return time.Duration(domain.Distance(b.pos, pos) / b.speed * float64(time.Second))
}

func (b *Body) AtPosition(pos domain.Vec2) bool {
	return domain.Distance(b.pos, pos) <= ArrivalTolerance
}

func (b *Body) HasLineOfSight(pos domain.Vec2) bool { return b.world.Clear(b.pos, pos) }

func (b *Body) CanWalkBetween(from, to domain.Vec2) bool { return b.world.Clear(from, to) }

func (b *Body) Health() float64 { return b.health }

func (b *Body) MaxHealth() float64 { return b.maxHealth }

func (b *Body) Possessed() bool { return b.possessed }

// SetPossessed hands the body to or from manual control.
func (b *Body) SetPossessed(on bool) { b.possessed = on }

// Damage lowers health, never below zero.
func (b *Body) Damage(amount float64) {
	b.health -= amount
	if b.health < 0 {
		b.health = 0
	}
}

// Teleport moves the body without simulation.
func (b *Body) Teleport(pos domain.Vec2) { b.pos = pos }
