package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/pkg/domain"
)

// Event is one server-sent lifecycle event.
type Event struct {
	Type    domain.EventType
	AgentID string
	Data    []byte
}

// StreamManager fans lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // agent id ("" for all) -> channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for one agent's events, or all events when
// agentID is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(agentID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 64)
	if _, ok := sm.subscribers[agentID]; !ok {
		sm.subscribers[agentID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[agentID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[agentID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, agentID)
			}
		}
	}
}

// Subscribers counts open subscriptions.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}

// Broadcast sends ev to the agent's subscribers and to the catch-all ones.
func (sm *StreamManager) Broadcast(ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	keys := []string{""}
	if ev.AgentID != "" {
		keys = append(keys, ev.AgentID)
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- ev:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: client buffer full, dropping event", "agent", ev.AgentID, "type", ev.Type)
			}
		}
	}
}

func (sm *StreamManager) publish(typ domain.EventType, agentID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: encode event", "type", typ, "err", err)
		return
	}
	sm.Broadcast(Event{Type: typ, AgentID: agentID, Data: data})
}

// Hooks returns lifecycle hooks that broadcast every event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalActivate: func(_ context.Context, e *domain.GoalEvent) {
			sm.publish(e.Type, e.AgentID, e)
		},
		OnGoalTerminate: func(_ context.Context, e *domain.GoalEvent) {
			sm.publish(e.Type, e.AgentID, e)
		},
		OnArbitrate: func(_ context.Context, e *domain.ArbitrationEvent) {
			sm.publish(e.Type, e.AgentID, e)
		},
		OnSearchResolve: func(_ context.Context, e *domain.SearchEvent) {
			sm.publish(e.Type, e.AgentID, e)
		},
	}
}
