package goal

import "github.com/aretw0/tactic/pkg/domain"

// Composite is a goal that owns an ordered list of children. The front child
// is the only one processed or messaged.
type Composite struct {
	Base
	subgoals []Goal // subgoals[0] is the front
}

// NewComposite creates an inactive composite with no children.
func NewComposite(env *Env, kind string) Composite {
	return Composite{Base: NewBase(env, kind)}
}

// AddSubgoal pushes g to the front, making it the next child to run.
func (c *Composite) AddSubgoal(g Goal) error {
	c.subgoals = append([]Goal{g}, c.subgoals...)
	return nil
}

// QueueSubgoal appends g behind every existing child.
func (c *Composite) QueueSubgoal(g Goal) {
	c.subgoals = append(c.subgoals, g)
}

// Front returns the active child, or nil.
func (c *Composite) Front() Goal {
	if len(c.subgoals) == 0 {
		return nil
	}
	return c.subgoals[0]
}

// Subgoals returns the children front first. The slice must not be modified.
func (c *Composite) Subgoals() []Goal { return c.subgoals }

// ProcessSubgoals drops finished children from the front, terminating each,
// then processes the new front child. A completed child with siblings behind
// it yields active so the parent keeps draining.
func (c *Composite) ProcessSubgoals() domain.Status {
	for len(c.subgoals) > 0 && c.subgoals[0].Status().Finished() {
		c.release(c.subgoals[0])
		c.subgoals[0] = nil
		c.subgoals = c.subgoals[1:]
	}
	if len(c.subgoals) == 0 {
		return domain.StatusCompleted
	}

	status := c.subgoals[0].Process()
	if status == domain.StatusCompleted && len(c.subgoals) > 1 {
		return domain.StatusActive
	}
	return status
}

// RemoveAllSubgoals terminates every child, then discards them all.
func (c *Composite) RemoveAllSubgoals() {
	for _, g := range c.subgoals {
		c.release(g)
	}
	clear(c.subgoals)
	c.subgoals = nil
}

// ForwardToFront passes msg to the front child.
func (c *Composite) ForwardToFront(msg domain.Message) bool {
	if len(c.subgoals) == 0 {
		return false
	}
	return c.subgoals[0].HandleMessage(msg)
}

// HandleMessage forwards to the front child. Composites that intercept
// messages override it and fall back to ForwardToFront.
func (c *Composite) HandleMessage(msg domain.Message) bool {
	return c.ForwardToFront(msg)
}

// Terminate removes every child.
func (c *Composite) Terminate() {
	c.RemoveAllSubgoals()
}

func (c *Composite) release(g Goal) {
	g.Terminate()
	c.env.Logger.Debug("goal terminated", "agent", c.env.Agent.ID(), "kind", g.Kind(), "status", g.Status())
	c.env.emit(domain.EventGoalTerminate, g)
}

// Parent is implemented by goals that hold children.
type Parent interface {
	Front() Goal
}

// Chain returns the active goal chain from root down to the leaf.
func Chain(root Goal) []domain.GoalFrame {
	var frames []domain.GoalFrame
	for g := root; g != nil; {
		frames = append(frames, domain.GoalFrame{Kind: g.Kind(), Status: g.Status().String()})
		p, ok := g.(Parent)
		if !ok {
			break
		}
		g = p.Front()
	}
	return frames
}
