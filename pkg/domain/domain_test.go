package domain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBehavior(t *testing.T) {
	b, err := domain.ParseBehavior("")
	require.NoError(t, err)
	assert.Equal(t, domain.BehaviorNormal, b)

	for _, known := range domain.Behaviors {
		got, err := domain.ParseBehavior(string(known))
		require.NoError(t, err)
		assert.Equal(t, known, got)
	}

	_, err = domain.ParseBehavior("teleport")
	assert.ErrorIs(t, err, domain.ErrUnknownBehavior)
}

func TestStatus_JSON(t *testing.T) {
	ev := domain.GoalEvent{Kind: "explore", Status: domain.StatusFailed}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"failed"`)

	var back domain.GoalEvent
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, domain.StatusFailed, back.Status)
	assert.True(t, back.Status.Finished())
	assert.False(t, domain.StatusActive.Finished())
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{
		OnGoalActivate: func(context.Context, *domain.GoalEvent) { order = append(order, "a") },
	}
	b := domain.LifecycleHooks{
		OnGoalActivate:  func(context.Context, *domain.GoalEvent) { order = append(order, "b") },
		OnGoalTerminate: func(context.Context, *domain.GoalEvent) { order = append(order, "t") },
	}

	merged := a.Merge(b)
	merged.OnGoalActivate(context.Background(), &domain.GoalEvent{})
	merged.OnGoalTerminate(context.Background(), &domain.GoalEvent{})
	assert.Nil(t, merged.OnArbitrate)
	assert.Equal(t, []string{"a", "b", "t"}, order)
}
