package ports

import (
	"context"

	"github.com/aretw0/tactic/pkg/domain"
)

// SnapshotStore persists the latest snapshot of each agent.
type SnapshotStore interface {
	// Save persists the snapshot for a given agent ID.
	Save(ctx context.Context, agentID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given agent ID.
	// Returns domain.ErrSnapshotNotFound if the agent has none.
	Load(ctx context.Context, agentID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given agent ID.
	Delete(ctx context.Context, agentID string) error

	// List returns the IDs of every stored agent.
	List(ctx context.Context) ([]string, error)
}
