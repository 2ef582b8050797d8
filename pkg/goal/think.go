package goal

import (
	"context"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/ports"
)

// KindThink is the kind reported by the arbitrator.
const KindThink = "think"

// Evaluator scores how desirable its top-level goal is for an agent right now.
type Evaluator interface {
	// Name identifies the evaluator in logs and metrics.
	Name() string
	// Desirability returns a non-negative score; higher wins.
	Desirability(agent ports.Agent) float64
	// GoalKind is the kind of goal NewGoal builds.
	GoalKind() string
	// NewGoal builds the top-level goal this evaluator installs.
	NewGoal(env *Env) Goal
}

// TieBreak selects which evaluator wins an exact tie.
type TieBreak int

const (
	// TieFirst keeps the earliest registered evaluator.
	TieFirst TieBreak = iota
	// TieLast lets a later evaluator with an equal score take over.
	TieLast
)

// ThinkOption configures a Think goal.
type ThinkOption func(*Think)

// WithTieBreak sets the tie policy used by Arbitrate.
func WithTieBreak(tb TieBreak) ThinkOption {
	return func(t *Think) {
		t.tieBreak = tb
	}
}

// Think is the root arbitrator of an agent's goal tree.
type Think struct {
	Composite
	evaluators []Evaluator
	tieBreak   TieBreak

	lastWinner string
	lastScore  float64
}

// NewThink creates an arbitrator over evaluators, scored in registration order.
func NewThink(env *Env, evaluators []Evaluator, opts ...ThinkOption) *Think {
	t := &Think{
		Composite:  NewComposite(env, KindThink),
		evaluators: evaluators,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddEvaluator registers another evaluator after the existing ones.
func (t *Think) AddEvaluator(ev Evaluator) {
	t.evaluators = append(t.evaluators, ev)
}

// Activate arbitrates unless the agent is under manual control.
func (t *Think) Activate() {
	if !t.Agent().Possessed() {
		t.Arbitrate()
	}
	t.SetStatus(domain.StatusActive)
}

// Process runs the active chain. When the chain drains, the arbitrator goes
// back to inactive so the next tick arbitrates again.
func (t *Think) Process() domain.Status {
	t.ActivateIfInactive(t)

	status := t.ProcessSubgoals()
	if status.Finished() && !t.Agent().Possessed() {
		t.SetStatus(domain.StatusInactive)
	}
	return t.Status()
}

// Arbitrate scores every evaluator and installs the winner's goal.
// Negative scores are treated as zero.
func (t *Think) Arbitrate() {
	var (
		best   Evaluator
		score  float64
		scores = make(map[string]float64, len(t.evaluators))
	)
	for _, ev := range t.evaluators {
		d := ev.Desirability(t.Agent())
		if d < 0 {
			t.Logger().Warn("negative desirability clamped", "agent", t.Agent().ID(), "evaluator", ev.Name(), "score", d)
			d = 0
		}
		scores[ev.Name()] = d
		if best == nil || d > score || (t.tieBreak == TieLast && d == score) {
			best, score = ev, d
		}
	}
	if best == nil {
		return
	}

	t.lastWinner, t.lastScore = best.Name(), score
	t.Logger().Debug("arbitrated", "agent", t.Agent().ID(), "evaluator", best.Name(), "score", score)
	if hook := t.Env().Hooks.OnArbitrate; hook != nil {
		hook(context.Background(), &domain.ArbitrationEvent{
			EventBase: domain.EventBase{
				Timestamp: t.Now(),
				Type:      domain.EventArbitrate,
				AgentID:   t.Agent().ID(),
			},
			Evaluator: best.Name(),
			Score:     score,
			Scores:    scores,
		})
	}
	t.SetGoal(best)
}

// SetGoal installs the evaluator's goal unless one of that kind is already running.
func (t *Think) SetGoal(ev Evaluator) {
	if t.IsActiveKind(ev.GoalKind()) {
		return
	}
	t.RemoveAllSubgoals()
	_ = t.AddSubgoal(ev.NewGoal(t.Env()))
}

// IsActiveKind reports whether the front child is of the given kind and has
// not yet finished.
func (t *Think) IsActiveKind(kind string) bool {
	front := t.Front()
	return front != nil && front.Kind() == kind && !front.Status().Finished()
}

// Replace discards the current chain and runs g next. It is meant for manual
// control of a possessed agent.
func (t *Think) Replace(g Goal) {
	t.RemoveAllSubgoals()
	_ = t.AddSubgoal(g)
	t.SetStatus(domain.StatusActive)
}

// Queue appends g behind the current chain.
func (t *Think) Queue(g Goal) {
	t.QueueSubgoal(g)
	if t.IsInactive() && t.Agent().Possessed() {
		t.SetStatus(domain.StatusActive)
	}
}

// LastArbitration returns the most recent winner and its score.
func (t *Think) LastArbitration() (string, float64) {
	return t.lastWinner, t.lastScore
}
