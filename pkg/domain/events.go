package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGoalActivate  EventType = "goal_activate"
	EventGoalTerminate EventType = "goal_terminate"
	EventArbitrate     EventType = "arbitrate"
	EventSearchResolve EventType = "search_resolve"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	AgentID   string    `json:"agent_id"`
}

// GoalEvent represents a goal entering activation or being terminated.
type GoalEvent struct {
	EventBase
	Kind   string `json:"kind"`
	Status Status `json:"status"`
}

// ArbitrationEvent reports the evaluator that won an arbitration round.
type ArbitrationEvent struct {
	EventBase
	Evaluator string             `json:"evaluator"`
	Score     float64            `json:"score"`
	Scores    map[string]float64 `json:"scores,omitempty"`
}

// SearchEvent reports a resolved path search.
type SearchEvent struct {
	EventBase
	Algorithm string  `json:"algorithm"`
	Outcome   string  `json:"outcome"`
	Steps     int     `json:"steps"`
	Cost      float64 `json:"cost"`
	Source    int     `json:"source"`
	Target    int     `json:"target"`
}

// LifecycleHooks defines callbacks for scheduler observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnGoalActivate  func(context.Context, *GoalEvent)
	OnGoalTerminate func(context.Context, *GoalEvent)
	OnArbitrate     func(context.Context, *ArbitrationEvent)
	OnSearchResolve func(context.Context, *SearchEvent)
}

// Merge returns hooks that call h first and then other for every callback.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnGoalActivate:  chain(h.OnGoalActivate, other.OnGoalActivate),
		OnGoalTerminate: chain(h.OnGoalTerminate, other.OnGoalTerminate),
		OnArbitrate:     chain(h.OnArbitrate, other.OnArbitrate),
		OnSearchResolve: chain(h.OnSearchResolve, other.OnSearchResolve),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
