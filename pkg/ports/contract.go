package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	agentID := "contract-agent-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot(agentID)
		snap.Tick = 42
		snap.Position = domain.Vec2{X: 1.5, Y: -2}
		snap.Goals = []domain.GoalFrame{
			{Kind: "think", Status: "active"},
			{Kind: "explore", Status: "active"},
		}
		snap.LastEvaluator = "explore"

		err := store.Save(ctx, agentID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Tick, loaded.Tick)
		assert.Equal(t, snap.Position, loaded.Position)
		assert.Equal(t, snap.Goals, loaded.Goals)
		assert.Equal(t, "explore", loaded.LastEvaluator)
	})

	t.Run("Saved Snapshot Is Isolated", func(t *testing.T) {
		snap := domain.NewSnapshot(agentID)
		snap.Goals = []domain.GoalFrame{{Kind: "think", Status: "active"}}
		require.NoError(t, store.Save(ctx, agentID, snap))

		snap.Goals[0].Kind = "mutated"

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, "think", loaded.Goals[0].Kind)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+agentID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, agentID, domain.NewSnapshot(agentID))
		require.NoError(t, err)

		err = store.Delete(ctx, agentID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, agentID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := agentID + "-1"
		id2 := agentID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		agents, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, agents, id1)
		assert.Contains(t, agents, id2)
	})
}
