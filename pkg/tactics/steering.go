package tactics

import (
	"time"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/search"
)

// SeekToPosition steers the agent straight at a point.
type SeekToPosition struct {
	goal.Base
	kit      *Kit
	target   domain.Vec2
	start    domain.Vec2
	deadline time.Time
}

// NewSeekToPosition creates a goal that seeks target.
func NewSeekToPosition(kit *Kit, target domain.Vec2) *SeekToPosition {
	return &SeekToPosition{
		Base:   goal.NewBase(kit.Env, KindSeekToPosition),
		kit:    kit,
		target: target,
	}
}

func (g *SeekToPosition) Activate() {
	g.SetStatus(domain.StatusActive)
	a := g.Agent()
	g.start = a.Position()
	g.deadline = g.kit.expectedBy(g.Now(), a.TimeToReach(g.target))
	a.SetSeekTarget(g.target)
	a.SetBehavior(domain.SteerSeek, true)
}

func (g *SeekToPosition) Process() domain.Status {
	g.ActivateIfInactive(g)
	if !g.IsActive() {
		return g.Status()
	}

	pos := g.Agent().Position()
	switch {
	case g.Agent().AtPosition(g.target) || overshot(g.start, g.target, pos):
		g.SetStatus(domain.StatusCompleted)
	case g.Now().After(g.deadline):
		g.Logger().Debug("agent stuck", "agent", g.Agent().ID(), "kind", g.Kind(), "target", g.target)
		g.SetStatus(domain.StatusFailed)
	}
	return g.Status()
}

func (g *SeekToPosition) Terminate() {
	g.Agent().SetBehavior(domain.SteerSeek, false)
}

// Target returns the point being sought.
func (g *SeekToPosition) Target() domain.Vec2 { return g.target }

// overshot reports whether pos lies beyond target when travelling from start.
func overshot(start, target, pos domain.Vec2) bool {
	dir := target.Sub(start)
	rest := target.Sub(pos)
	if dir.Len() == 0 {
		return false
	}
	return dir.X*rest.X+dir.Y*rest.Y < 0
}

// TraverseEdge moves the agent along one path edge using the steering mode
// its behavior calls for. The last edge of a path arrives instead of seeking.
type TraverseEdge struct {
	goal.Base
	kit      *Kit
	edge     search.PathEdge
	last     bool
	steering domain.Steering
	start    domain.Vec2
	deadline time.Time
}

// NewTraverseEdge creates a goal for edge. last marks the final edge of a path.
func NewTraverseEdge(kit *Kit, edge search.PathEdge, last bool) *TraverseEdge {
	return &TraverseEdge{
		Base: goal.NewBase(kit.Env, KindTraverseEdge),
		kit:  kit,
		edge: edge,
		last: last,
	}
}

func (g *TraverseEdge) Activate() {
	steering, err := domain.SteeringFor(g.edge.Behavior)
	if err != nil {
		g.Logger().Error("cannot traverse edge", "agent", g.Agent().ID(), "err", err)
		g.SetStatus(domain.StatusFailed)
		return
	}
	if steering == domain.SteerSeek && g.last {
		steering = domain.SteerArrive
	}

	g.SetStatus(domain.StatusActive)
	a := g.Agent()
	g.steering = steering
	g.start = a.Position()
	g.deadline = g.kit.expectedBy(g.Now(), a.TimeToReach(g.edge.To))
	a.SetSeekTarget(g.edge.To)
	a.SetBehavior(steering, true)

	if g.edge.Behavior == domain.BehaviorDoor && g.kit.Sender != nil {
		err := g.kit.Sender.Dispatch(domain.Message{
			Kind:     domain.MsgOpenDoor,
			Sender:   a.ID(),
			Receiver: WorldReceiver,
			Payload:  g.edge.Payload,
		})
		if err != nil {
			g.Logger().Warn("door request not delivered", "agent", a.ID(), "door", g.edge.Payload, "err", err)
		}
	}
}

func (g *TraverseEdge) Process() domain.Status {
	g.ActivateIfInactive(g)
	if !g.IsActive() {
		return g.Status()
	}

	pos := g.Agent().Position()
	switch {
	case g.Agent().AtPosition(g.edge.To):
		g.SetStatus(domain.StatusCompleted)
	case !g.last && overshot(g.start, g.edge.To, pos):
		g.SetStatus(domain.StatusCompleted)
	case g.Now().After(g.deadline):
		g.Logger().Debug("agent stuck on edge", "agent", g.Agent().ID(), "behavior", g.edge.Behavior, "to", g.edge.To)
		g.SetStatus(domain.StatusFailed)
	}
	return g.Status()
}

func (g *TraverseEdge) Terminate() {
	if g.steering != "" {
		g.Agent().SetBehavior(g.steering, false)
	}
}

// Edge returns the edge being traversed.
func (g *TraverseEdge) Edge() search.PathEdge { return g.edge }

// Wander turns on the wander steering mode until it is terminated. It never
// completes on its own.
type Wander struct {
	goal.Base
}

// NewWander creates a wander goal.
func NewWander(kit *Kit) *Wander {
	return &Wander{Base: goal.NewBase(kit.Env, KindWander)}
}

func (g *Wander) Activate() {
	g.SetStatus(domain.StatusActive)
	g.Agent().SetBehavior(domain.SteerWander, true)
}

func (g *Wander) Process() domain.Status {
	g.ActivateIfInactive(g)
	return g.Status()
}

func (g *Wander) Terminate() {
	g.Agent().SetBehavior(domain.SteerWander, false)
}
