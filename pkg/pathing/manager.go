// Package pathing schedules time-sliced path searches for agents and reports
// their results back as messages.
package pathing

import (
	"log/slog"

	"github.com/aretw0/tactic/internal/logging"
)

// DefaultCyclesPerTick is the search budget shared by all planners per tick.
const DefaultCyclesPerTick = 50

// Manager steps every pending search round-robin within a per-tick budget.
// It is not safe for concurrent use.
type Manager struct {
	budget   int
	planners []*Planner
	logger   *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the manager logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager that performs at most cyclesPerTick search steps per Update.
func NewManager(cyclesPerTick int, opts ...ManagerOption) *Manager {
	if cyclesPerTick <= 0 {
		cyclesPerTick = DefaultCyclesPerTick
	}
	m := &Manager{
		budget: cyclesPerTick,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register queues p for stepping. Registering a queued planner is a no-op.
func (m *Manager) Register(p *Planner) {
	for _, q := range m.planners {
		if q == p {
			return
		}
	}
	m.planners = append(m.planners, p)
}

// Unregister drops p from the queue.
func (m *Manager) Unregister(p *Planner) {
	for i, q := range m.planners {
		if q == p {
			m.planners = append(m.planners[:i], m.planners[i+1:]...)
			return
		}
	}
}

// Budget returns the search steps allowed per tick.
func (m *Manager) Budget() int { return m.budget }

// Active returns the number of planners with a pending search.
func (m *Manager) Active() int { return len(m.planners) }

// Update spends the per-tick budget stepping pending searches one cycle at a
// time, round-robin. Planners whose search resolves are removed. It returns
// the number of cycles spent.
func (m *Manager) Update() int {
	spent := 0
	i := 0
	for spent < m.budget && len(m.planners) > 0 {
		if i >= len(m.planners) {
			i = 0
		}
		p := m.planners[i]
		out := p.CycleOnce()
		spent++
		if out.Terminal() {
			// A receiver may have issued a new request from inside CycleOnce.
			if !p.Pending() {
				m.Unregister(p)
			}
			continue
		}
		i++
	}
	if spent > 0 {
		m.logger.Debug("path searches updated", "cycles", spent, "pending", len(m.planners))
	}
	return spent
}
