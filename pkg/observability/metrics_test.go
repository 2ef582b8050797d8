package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/observability"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnGoalActivate(ctx, &domain.GoalEvent{Kind: "explore"})
	hooks.OnGoalActivate(ctx, &domain.GoalEvent{Kind: "explore"})
	hooks.OnGoalTerminate(ctx, &domain.GoalEvent{Kind: "explore", Status: domain.StatusCompleted})
	hooks.OnArbitrate(ctx, &domain.ArbitrationEvent{Evaluator: "health", Score: 0.3})
	hooks.OnSearchResolve(ctx, &domain.SearchEvent{Algorithm: "astar", Outcome: "found", Steps: 5, Cost: 4})
	hooks.OnSearchResolve(ctx, &domain.SearchEvent{Algorithm: "astar", Outcome: "not_found", Steps: 9})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.GoalActivations.WithLabelValues("explore")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GoalOutcomes.WithLabelValues("explore", domain.StatusCompleted.String())))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Arbitrations.WithLabelValues("health")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Searches.WithLabelValues("astar", "found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Searches.WithLabelValues("astar", "not_found")))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]uint64{}
	for _, f := range families {
		if h := f.GetMetric()[0].GetHistogram(); h != nil {
			counts[f.GetName()] = h.GetSampleCount()
		}
	}
	assert.Equal(t, uint64(2), counts["tactic_search_steps"])
	assert.Equal(t, uint64(1), counts["tactic_search_cost"], "only found paths have a cost")
}

func TestMetrics_MergeWithOtherHooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	var seen []string
	hooks := m.Hooks().Merge(domain.LifecycleHooks{
		OnArbitrate: func(_ context.Context, e *domain.ArbitrationEvent) { seen = append(seen, e.Evaluator) },
	})

	hooks.OnArbitrate(context.Background(), &domain.ArbitrationEvent{Evaluator: "wander"})
	assert.Equal(t, []string{"wander"}, seen)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Arbitrations.WithLabelValues("wander")))
}
