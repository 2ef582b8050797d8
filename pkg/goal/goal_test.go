package goal_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/tactic/internal/testutils"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe is an atomic goal that records its lifecycle and finishes after a
// fixed number of ticks.
type probe struct {
	goal.Base
	log      *[]string
	ticks    int
	outcome  domain.Status
	handles  domain.MessageKind
	activity int
}

func newProbe(env *goal.Env, kind string, log *[]string, ticks int, outcome domain.Status) *probe {
	return &probe{Base: goal.NewBase(env, kind), log: log, ticks: ticks, outcome: outcome}
}

func (p *probe) Activate() {
	*p.log = append(*p.log, "activate:"+p.Kind())
	p.SetStatus(domain.StatusActive)
}

func (p *probe) Process() domain.Status {
	p.ActivateIfInactive(p)
	*p.log = append(*p.log, "process:"+p.Kind())
	p.activity++
	if p.activity >= p.ticks {
		p.SetStatus(p.outcome)
	}
	return p.Status()
}

func (p *probe) Terminate() {
	*p.log = append(*p.log, "terminate:"+p.Kind())
}

func (p *probe) HandleMessage(msg domain.Message) bool {
	if msg.Kind == p.handles {
		*p.log = append(*p.log, "message:"+p.Kind())
		return true
	}
	return false
}

// sequence is a composite that adds its children on activation.
type sequence struct {
	goal.Composite
	build func(s *sequence)
}

func (s *sequence) Activate() {
	s.RemoveAllSubgoals()
	s.SetStatus(domain.StatusActive)
	s.build(s)
}

func (s *sequence) Process() domain.Status {
	s.ActivateIfInactive(s)
	s.SetStatus(s.ProcessSubgoals())
	return s.Status()
}

func newEnv(t *testing.T) *goal.Env {
	t.Helper()
	env := goal.NewEnv(testutils.NewAgent("bot", domain.Vec2{}))
	env.Clock = testutils.NewClock()
	return env
}

func TestBase_AtomicRejectsSubgoals(t *testing.T) {
	env := newEnv(t)
	var log []string
	p := newProbe(env, "leaf", &log, 1, domain.StatusCompleted)

	err := p.AddSubgoal(newProbe(env, "child", &log, 1, domain.StatusCompleted))
	assert.ErrorIs(t, err, domain.ErrAtomicGoal)
	assert.False(t, p.Base.HandleMessage(domain.Message{Kind: domain.MsgPathReady}))
}

func TestComposite_DrainOrder(t *testing.T) {
	env := newEnv(t)
	var log []string

	seq := &sequence{Composite: goal.NewComposite(env, "seq")}
	seq.build = func(s *sequence) {
		// pushed C, B, A so A runs first
		for _, kind := range []string{"C", "B", "A"} {
			require.NoError(t, s.AddSubgoal(newProbe(env, kind, &log, 1, domain.StatusCompleted)))
		}
	}

	var statuses []domain.Status
	for i := 0; i < 3; i++ {
		statuses = append(statuses, seq.Process())
	}
	assert.Equal(t, []domain.Status{domain.StatusActive, domain.StatusActive, domain.StatusCompleted}, statuses,
		"completed child with siblings remaining must report active")
	assert.Equal(t, []string{
		"activate:A", "process:A",
		"terminate:A", "activate:B", "process:B",
		"terminate:B", "activate:C", "process:C",
	}, log)
	assert.Len(t, seq.Subgoals(), 1, "last child is dropped on the next tick")

	seq.Process()
	assert.Empty(t, seq.Subgoals())
	assert.Equal(t, domain.StatusCompleted, seq.Status())
}

func TestComposite_FailurePropagates(t *testing.T) {
	env := newEnv(t)
	var log []string

	seq := &sequence{Composite: goal.NewComposite(env, "seq")}
	seq.build = func(s *sequence) {
		_ = s.AddSubgoal(newProbe(env, "B", &log, 1, domain.StatusCompleted))
		_ = s.AddSubgoal(newProbe(env, "A", &log, 1, domain.StatusFailed))
	}

	assert.Equal(t, domain.StatusFailed, seq.Process())
	// the failed child is removed next tick; B then runs if the parent keeps going
	assert.Equal(t, domain.StatusCompleted, seq.Process())
	assert.Equal(t, []string{"activate:A", "process:A", "terminate:A", "activate:B", "process:B"}, log)
}

func TestComposite_TerminateAllBeforeDiscard(t *testing.T) {
	env := newEnv(t)
	var log []string

	var terminated []domain.GoalEvent
	env.Hooks.OnGoalTerminate = func(_ context.Context, e *domain.GoalEvent) {
		terminated = append(terminated, *e)
	}

	seq := &sequence{Composite: goal.NewComposite(env, "seq")}
	seq.build = func(s *sequence) {
		for i := 3; i >= 1; i-- {
			_ = s.AddSubgoal(newProbe(env, fmt.Sprintf("g%d", i), &log, 5, domain.StatusCompleted))
		}
	}
	seq.Process()
	require.Len(t, seq.Subgoals(), 3)

	seq.Terminate()
	assert.Empty(t, seq.Subgoals())
	assert.Equal(t, []string{"activate:g1", "process:g1", "terminate:g1", "terminate:g2", "terminate:g3"}, log)

	require.Len(t, terminated, 3)
	assert.Equal(t, "g1", terminated[0].Kind)
	assert.Equal(t, domain.StatusActive, terminated[0].Status)
	assert.Equal(t, domain.StatusInactive, terminated[2].Status, "never-activated goals are terminated too")
}

func TestComposite_ReactivationClearsChildren(t *testing.T) {
	env := newEnv(t)
	var log []string
	builds := 0

	seq := &sequence{Composite: goal.NewComposite(env, "seq")}
	seq.build = func(s *sequence) {
		builds++
		_ = s.AddSubgoal(newProbe(env, fmt.Sprintf("try%d", builds), &log, 1, domain.StatusFailed))
		_ = s.AddSubgoal(newProbe(env, "extra", &log, 5, domain.StatusCompleted))
	}

	seq.Process()
	seq.SetStatus(domain.StatusFailed)
	seq.ReactivateIfFailed()
	require.True(t, seq.IsInactive())
	seq.Process()

	assert.Equal(t, 2, builds)
	assert.Contains(t, log, "terminate:try1", "stale children are terminated on replan")
	assert.Equal(t, "extra", seq.Front().Kind())
}

func TestComposite_MessagesGoToFrontOnly(t *testing.T) {
	env := newEnv(t)
	var log []string

	front := newProbe(env, "front", &log, 5, domain.StatusCompleted)
	front.handles = domain.MsgPathReady
	back := newProbe(env, "back", &log, 5, domain.StatusCompleted)
	back.handles = domain.MsgNoPathAvailable

	seq := &sequence{Composite: goal.NewComposite(env, "seq")}
	seq.build = func(s *sequence) {
		_ = s.AddSubgoal(back)
		_ = s.AddSubgoal(front)
	}
	seq.Process()
	log = nil

	assert.True(t, seq.HandleMessage(domain.Message{Kind: domain.MsgPathReady}))
	assert.False(t, seq.HandleMessage(domain.Message{Kind: domain.MsgNoPathAvailable}), "back child never sees messages")
	assert.Equal(t, []string{"message:front"}, log)

	empty := goal.NewComposite(env, "empty")
	assert.False(t, empty.HandleMessage(domain.Message{Kind: domain.MsgPathReady}))
}

func TestChain(t *testing.T) {
	env := newEnv(t)
	var log []string

	seq := &sequence{Composite: goal.NewComposite(env, "seq")}
	seq.build = func(s *sequence) {
		_ = s.AddSubgoal(newProbe(env, "leaf", &log, 5, domain.StatusCompleted))
	}
	seq.Process()

	assert.Equal(t, []domain.GoalFrame{
		{Kind: "seq", Status: "active"},
		{Kind: "leaf", Status: "active"},
	}, goal.Chain(seq))
}

var _ ports.Agent = (*testutils.Agent)(nil)
