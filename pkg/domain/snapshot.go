package domain

import "time"

// GoalFrame is one level of an agent's active goal chain.
type GoalFrame struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// Snapshot is the persisted view of an agent after a tick.
type Snapshot struct {
	AgentID  string    `json:"agent_id"`
	Tick     uint64    `json:"tick"`
	SavedAt  time.Time `json:"saved_at"`
	Position Vec2      `json:"position"`
	Health   float64   `json:"health"`

	// Goals is the active chain, root first.
	Goals []GoalFrame `json:"goals"`

	LastEvaluator string  `json:"last_evaluator,omitempty"`
	LastScore     float64 `json:"last_score,omitempty"`
	Possessed     bool    `json:"possessed,omitempty"`
}

// NewSnapshot creates an empty snapshot for an agent.
func NewSnapshot(agentID string) *Snapshot {
	return &Snapshot{
		AgentID: agentID,
		Goals:   []GoalFrame{},
	}
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Goals = append([]GoalFrame(nil), s.Goals...)
	return &c
}
