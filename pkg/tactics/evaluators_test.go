package tactics_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/ports"
	"github.com/aretw0/tactic/pkg/tactics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEvaluator(t *testing.T) {
	g := corridor(t)
	r := newRig(t, g, domain.Vec2{})
	ev := &tactics.HealthEvaluator{Kit: r.kit, Bias: 1, Item: "health"}

	t.Run("Healthy Agent Ignores Items", func(t *testing.T) {
		assert.Zero(t, ev.Desirability(r.agent))
	})

	t.Run("Closer Is Better", func(t *testing.T) {
		r.agent.HP = 50
		far := ev.Desirability(r.agent)
		assert.InDelta(t, 0.5/4, far, 1e-9)

		r.agent.Pos = domain.Vec2{X: 3}
		near := ev.Desirability(r.agent)
		assert.InDelta(t, 0.5, near, 1e-9)
		assert.Greater(t, near, far)
	})

	t.Run("Missing Item Scores Zero", func(t *testing.T) {
		none := &tactics.HealthEvaluator{Kit: r.kit, Bias: 1, Item: "armor"}
		assert.Zero(t, none.Desirability(r.agent))
	})

	assert.Equal(t, "get_item:health", ev.GoalKind())
	assert.Equal(t, "get_item:health", ev.NewGoal(r.kit.Env).Kind())
}

func TestHealthEvaluator_LongRoute(t *testing.T) {
	const nodes = 300
	g := graph.NewSparse()
	for i := 0; i < nodes; i++ {
		item := ""
		if i == nodes-1 {
			item = "health"
		}
		g.AddNode(domain.Vec2{X: float64(i)}, item)
	}
	for i := 0; i < nodes-1; i++ {
		require.NoError(t, g.AddBidirectional(graph.Edge{From: i, To: i + 1, Cost: 1}))
	}
	r := newRig(t, g, domain.Vec2{})
	r.agent.HP = 50
	ev := &tactics.HealthEvaluator{Kit: r.kit, Bias: 1, Item: "health"}

	// The rig budget is 100 steps, so the route resolves on the third call.
	assert.Zero(t, ev.Desirability(r.agent))
	assert.Zero(t, ev.Desirability(r.agent))
	assert.InDelta(t, 0.5/float64(nodes-1), ev.Desirability(r.agent), 1e-9)
}

func TestExprEvaluator(t *testing.T) {
	g := corridor(t)
	r := newRig(t, g, domain.Vec2{X: 2, Y: 1})
	r.agent.HP = 40
	var tick uint64 = 7
	r.kit.Tick = func() uint64 { return tick }

	kind, build, err := tactics.GoalFor("wander", "", domain.Vec2{})
	require.NoError(t, err)

	t.Run("Scores Expression", func(t *testing.T) {
		ev, err := tactics.NewExprEvaluator(r.kit, "hurt", "(max_health - health) / max_health + x * y + tick", 2, kind, build)
		require.NoError(t, err)
		assert.InDelta(t, 2*(0.6+2+7), ev.Desirability(r.agent), 1e-9)
		assert.Equal(t, "hurt", ev.Name())
		assert.Equal(t, tactics.KindWander, ev.NewGoal(r.kit.Env).Kind())
	})

	t.Run("Integer Result", func(t *testing.T) {
		ev, err := tactics.NewExprEvaluator(r.kit, "late", "tick > 5 ? 3 : 0", 1, kind, build)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, ev.Desirability(r.agent), 1e-9)
	})

	t.Run("Rejects Bad Source", func(t *testing.T) {
		_, err := tactics.NewExprEvaluator(r.kit, "bad", "health +", 1, kind, build)
		assert.Error(t, err)

		_, err = tactics.NewExprEvaluator(r.kit, "bad", `"high"`, 1, kind, build)
		assert.Error(t, err)
	})
}

func TestGoalFor(t *testing.T) {
	for _, tc := range []struct {
		name, item string
		kind       string
		wantErr    bool
	}{
		{name: "explore", kind: tactics.KindExplore},
		{name: "wander", kind: tactics.KindWander},
		{name: "get_item", item: "ammo", kind: "get_item:ammo"},
		{name: "get_item", wantErr: true},
		{name: "move_to", kind: tactics.KindMoveToPosition},
		{name: "dance", wantErr: true},
	} {
		t.Run(tc.name+tc.item, func(t *testing.T) {
			kind, build, err := tactics.GoalFor(tc.name, tc.item, domain.Vec2{X: 1})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)
			assert.NotNil(t, build)
		})
	}
}

func TestThink_PicksHealthWhenHurt(t *testing.T) {
	g := corridor(t)
	r := newRig(t, g, domain.Vec2{})
	think := goal.NewThink(r.kit.Env, []goal.Evaluator{
		&tactics.ExploreEvaluator{Kit: r.kit, Bias: 1},
		&tactics.HealthEvaluator{Kit: r.kit, Bias: 1, Item: "health"},
	})
	r.root = think

	think.Process()
	require.NotNil(t, think.Front())
	assert.Equal(t, tactics.KindExplore, think.Front().Kind())

	r.agent.HP = 10
	think.Arbitrate()
	assert.Equal(t, "get_item:health", think.Front().Kind())
	winner, score := think.LastArbitration()
	assert.Equal(t, "health", winner)
	assert.InDelta(t, 0.9/4, score, 1e-9)
}

// moveEvaluator always wants to travel to dest.
type moveEvaluator struct {
	kit  *tactics.Kit
	dest domain.Vec2
}

func (e *moveEvaluator) Name() string { return "move" }
func (e *moveEvaluator) Desirability(ports.Agent) float64 { return 1 }
func (e *moveEvaluator) GoalKind() string { return tactics.KindMoveToPosition }
func (e *moveEvaluator) NewGoal(*goal.Env) goal.Goal { return tactics.NewMoveToPosition(e.kit, e.dest) }

func TestThink_RearbitratesWhenStuck(t *testing.T) {
	g := corridor(t)
	r := newRig(t, g, domain.Vec2{})
	r.agent.NoSight = true

	arbitrations := 0
	var failed []string
	r.kit.Env.Hooks.OnArbitrate = func(context.Context, *domain.ArbitrationEvent) { arbitrations++ }
	r.kit.Env.Hooks.OnGoalTerminate = func(_ context.Context, e *domain.GoalEvent) {
		if e.Kind == tactics.KindMoveToPosition && e.Status == domain.StatusFailed {
			failed = append(failed, e.Kind)
		}
	}

	think := goal.NewThink(r.kit.Env, []goal.Evaluator{&moveEvaluator{kit: r.kit, dest: domain.Vec2{X: 3}}})
	r.root = think

	// The agent never moves, so every plan stalls.
	for i := 0; i < 60 && arbitrations < 2; i++ {
		r.mgr.Update()
		r.clock.Advance(10 * time.Second)
		think.Process()
	}
	assert.GreaterOrEqual(t, arbitrations, 2)
	assert.NotEmpty(t, failed)
}
