package tactics

import (
	"context"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/ports"
)

// DefaultExploreScore is the flat desirability of exploring, before bias.
const DefaultExploreScore = 0.05

// ExploreEvaluator always wants to explore a little.
type ExploreEvaluator struct {
	Kit   *Kit
	Bias  float64
	Score float64
}

func (e *ExploreEvaluator) Name() string { return KindExplore }

func (e *ExploreEvaluator) Desirability(ports.Agent) float64 {
	score := e.Score
	if score == 0 {
		score = DefaultExploreScore
	}
	return e.Bias * score
}

func (e *ExploreEvaluator) GoalKind() string { return KindExplore }

func (e *ExploreEvaluator) NewGoal(*goal.Env) goal.Goal { return NewExplore(e.Kit) }

// WanderEvaluator scores wandering with a constant.
type WanderEvaluator struct {
	Kit   *Kit
	Bias  float64
	Score float64
}

func (e *WanderEvaluator) Name() string { return KindWander }

func (e *WanderEvaluator) Desirability(ports.Agent) float64 { return e.Bias * e.Score }

func (e *WanderEvaluator) GoalKind() string { return KindWander }

func (e *WanderEvaluator) NewGoal(*goal.Env) goal.Goal { return NewWander(e.Kit) }

// HealthEvaluator wants an item in proportion to how hurt the agent is, and
// inversely to the path cost of reaching the nearest one.
type HealthEvaluator struct {
	Kit  *Kit
	Bias float64
	Item string
}

func (e *HealthEvaluator) Name() string { return "health" }

func (e *HealthEvaluator) Desirability(agent ports.Agent) float64 {
	maxHP := agent.MaxHealth()
	if maxHP <= 0 {
		return 0
	}
	need := 1 - agent.Health()/maxHP
	if need <= 0 {
		return 0
	}
	cost, ok := e.Kit.Planner.CostToItem(context.Background(), e.Item)
	if !ok {
		return 0
	}
	return e.Bias * need / math.Max(cost, 1)
}

func (e *HealthEvaluator) GoalKind() string { return KindGetItem(e.Item) }

func (e *HealthEvaluator) NewGoal(*goal.Env) goal.Goal { return NewGetItem(e.Kit, e.Item) }

// ExprEnv is the variable set visible to desirability expressions.
type ExprEnv struct {
	Health    float64 `expr:"health"`
	MaxHealth float64 `expr:"max_health"`
	X         float64 `expr:"x"`
	Y         float64 `expr:"y"`
	Tick      uint64  `expr:"tick"`
}

// ExprEvaluator scores with a compiled expression and installs a goal built
// by Build.
type ExprEvaluator struct {
	Kit     *Kit
	Label   string
	Bias    float64
	Kind    string
	Build   func(kit *Kit) goal.Goal
	program *vm.Program
	source  string
}

// NewExprEvaluator compiles source. The expression must yield a number.
func NewExprEvaluator(kit *Kit, label, source string, bias float64, kind string, build func(*Kit) goal.Goal) (*ExprEvaluator, error) {
	program, err := expr.Compile(source,
		expr.Env(ExprEnv{}),
		expr.AsFloat64(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile desirability %q: %w", source, err)
	}
	return &ExprEvaluator{
		Kit:     kit,
		Label:   label,
		Bias:    bias,
		Kind:    kind,
		Build:   build,
		program: program,
		source:  source,
	}, nil
}

func (e *ExprEvaluator) Name() string { return e.Label }

func (e *ExprEvaluator) Desirability(agent ports.Agent) float64 {
	pos := agent.Position()
	env := ExprEnv{
		Health:    agent.Health(),
		MaxHealth: agent.MaxHealth(),
		X:         pos.X,
		Y:         pos.Y,
		Tick:      e.Kit.Tick(),
	}
	out, err := expr.Run(e.program, env)
	if err != nil {
		e.Kit.Env.Logger.Error("desirability expression failed", "evaluator", e.Label, "expression", e.source, "err", err)
		return 0
	}
	score, ok := out.(float64)
	if !ok || math.IsNaN(score) {
		return 0
	}
	return e.Bias * score
}

func (e *ExprEvaluator) GoalKind() string { return e.Kind }

func (e *ExprEvaluator) NewGoal(*goal.Env) goal.Goal { return e.Build(e.Kit) }

// Expression returns the source the evaluator was compiled from.
func (e *ExprEvaluator) Expression() string { return e.source }

// GoalFor returns a builder for a named top-level goal: explore, wander,
// get_item (with item) or move_to (with dest).
func GoalFor(name, item string, dest domain.Vec2) (kind string, build func(*Kit) goal.Goal, err error) {
	switch name {
	case KindExplore:
		return KindExplore, func(k *Kit) goal.Goal { return NewExplore(k) }, nil
	case KindWander:
		return KindWander, func(k *Kit) goal.Goal { return NewWander(k) }, nil
	case "get_item":
		if item == "" {
			return "", nil, fmt.Errorf("get_item needs an item type")
		}
		return KindGetItem(item), func(k *Kit) goal.Goal { return NewGetItem(k, item) }, nil
	case "move_to":
		return KindMoveToPosition, func(k *Kit) goal.Goal { return NewMoveToPosition(k, dest) }, nil
	}
	return "", nil, fmt.Errorf("unknown goal %q", name)
}
