package goal

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/ports"
)

// Goal is the uniform capability shared by atomic and composite goals.
type Goal interface {
	Kind() string
	Status() domain.Status

	// Activate prepares the goal and may create subgoals. It is called by
	// Process when the goal is inactive.
	Activate()
	// Process runs one tick of work and returns the resulting status.
	Process() domain.Status
	// Terminate releases externally visible effects. It is called exactly once,
	// before the goal is discarded, even if Activate never ran.
	Terminate()

	// HandleMessage returns true when the message was consumed.
	HandleMessage(msg domain.Message) bool
	// AddSubgoal pushes g to the front of the goal's children.
	AddSubgoal(g Goal) error
}

// Env is what every goal in one agent's tree shares.
type Env struct {
	Agent  ports.Agent
	Logger *slog.Logger
	Hooks  domain.LifecycleHooks
	Clock  ports.Clock
}

// NewEnv builds an Env with a no-op logger and the system clock.
func NewEnv(agent ports.Agent) *Env {
	return &Env{
		Agent:  agent,
		Logger: logging.NewNop(),
		Clock:  ports.SystemClock{},
	}
}

func (e *Env) emit(typ domain.EventType, g Goal) {
	hook := e.Hooks.OnGoalActivate
	if typ == domain.EventGoalTerminate {
		hook = e.Hooks.OnGoalTerminate
	}
	if hook == nil {
		return
	}
	hook(context.Background(), &domain.GoalEvent{
		EventBase: domain.EventBase{
			Timestamp: e.Clock.Now(),
			Type:      typ,
			AgentID:   e.Agent.ID(),
		},
		Kind:   g.Kind(),
		Status: g.Status(),
	})
}

// Base is the atomic goal. Concrete goals embed it and implement Activate,
// Process and, when they hold effects, Terminate.
type Base struct {
	env    *Env
	kind   string
	status domain.Status
}

// NewBase creates an inactive atomic goal.
func NewBase(env *Env, kind string) Base {
	return Base{env: env, kind: kind}
}

func (b *Base) Kind() string { return b.kind }

func (b *Base) Status() domain.Status { return b.status }

func (b *Base) SetStatus(s domain.Status) { b.status = s }

func (b *Base) Env() *Env { return b.env }

func (b *Base) Agent() ports.Agent { return b.env.Agent }

func (b *Base) Logger() *slog.Logger { return b.env.Logger }

// Now reads the tree's clock.
func (b *Base) Now() time.Time { return b.env.Clock.Now() }

func (b *Base) IsActive() bool   { return b.status == domain.StatusActive }
func (b *Base) IsInactive() bool { return b.status == domain.StatusInactive }
func (b *Base) IsComplete() bool { return b.status == domain.StatusCompleted }
func (b *Base) HasFailed() bool  { return b.status == domain.StatusFailed }

// ActivateIfInactive calls self.Activate when the goal is inactive.
// self must be the goal that embeds b.
func (b *Base) ActivateIfInactive(self Goal) {
	if b.status != domain.StatusInactive {
		return
	}
	self.Activate()
	b.env.Logger.Debug("goal activated", "agent", b.env.Agent.ID(), "kind", b.kind, "status", b.status)
	b.env.emit(domain.EventGoalActivate, self)
}

// ReactivateIfFailed resets a failed goal so the next Process replans.
// Goals that should propagate failure upwards simply never call it.
func (b *Base) ReactivateIfFailed() {
	if b.status == domain.StatusFailed {
		b.status = domain.StatusInactive
	}
}

func (b *Base) Terminate() {}

func (b *Base) HandleMessage(domain.Message) bool { return false }

func (b *Base) AddSubgoal(Goal) error { return domain.ErrAtomicGoal }
