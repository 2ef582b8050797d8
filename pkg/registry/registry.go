// Package registry maps evaluator kinds named in scenario files to the
// factories that build them.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/tactics"
)

// Spec describes one evaluator as written in a scenario.
type Spec struct {
	Kind   string         `json:"kind" yaml:"kind" mapstructure:"kind"`
	Bias   float64        `json:"bias,omitempty" yaml:"bias,omitempty" mapstructure:"bias"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Factory builds an evaluator for one agent from its kit and spec.
type Factory func(kit *tactics.Kit, spec Spec) (goal.Evaluator, error)

// Registry manages the available evaluator kinds.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Default returns a registry holding the built-in kinds: explore, health,
// wander and expr.
func Default() *Registry {
	r := NewRegistry()
	r.Register("explore", buildExplore)
	r.Register("health", buildHealth)
	r.Register("wander", buildWander)
	r.Register("expr", buildExpr)
	return r
}

// Register adds a factory.
// If a factory with the same kind exists, it is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = fn
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build looks up spec.Kind and runs its factory. A zero bias means 1.
func (r *Registry) Build(kit *tactics.Kit, spec Spec) (goal.Evaluator, error) {
	r.mu.RLock()
	fn, ok := r.factories[spec.Kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("evaluator %q: %w", spec.Kind, domain.ErrUnknownEvaluator)
	}
	if spec.Bias == 0 {
		spec.Bias = 1
	}
	ev, err := fn(kit, spec)
	if err != nil {
		return nil, fmt.Errorf("evaluator %q: %w", spec.Kind, err)
	}
	return ev, nil
}

// BuildAll builds every spec in order.
func (r *Registry) BuildAll(kit *tactics.Kit, specs []Spec) ([]goal.Evaluator, error) {
	evs := make([]goal.Evaluator, 0, len(specs))
	for _, s := range specs {
		ev, err := r.Build(kit, s)
		if err != nil {
			return nil, err
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

type scoreParams struct {
	Score float64 `mapstructure:"score"`
}

type healthParams struct {
	Item string `mapstructure:"item"`
}

type exprParams struct {
	Name       string  `mapstructure:"name"`
	Expression string  `mapstructure:"expression"`
	Goal       string  `mapstructure:"goal"`
	Item       string  `mapstructure:"item"`
	X          float64 `mapstructure:"x"`
	Y          float64 `mapstructure:"y"`
}

func decode(params map[string]any, out any) error {
	if params == nil {
		return nil
	}
	if err := mapstructure.Decode(params, out); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}

func buildExplore(kit *tactics.Kit, spec Spec) (goal.Evaluator, error) {
	var p scoreParams
	if err := decode(spec.Params, &p); err != nil {
		return nil, err
	}
	return &tactics.ExploreEvaluator{Kit: kit, Bias: spec.Bias, Score: p.Score}, nil
}

func buildWander(kit *tactics.Kit, spec Spec) (goal.Evaluator, error) {
	p := scoreParams{Score: 0.01}
	if err := decode(spec.Params, &p); err != nil {
		return nil, err
	}
	return &tactics.WanderEvaluator{Kit: kit, Bias: spec.Bias, Score: p.Score}, nil
}

func buildHealth(kit *tactics.Kit, spec Spec) (goal.Evaluator, error) {
	p := healthParams{Item: "health"}
	if err := decode(spec.Params, &p); err != nil {
		return nil, err
	}
	return &tactics.HealthEvaluator{Kit: kit, Bias: spec.Bias, Item: p.Item}, nil
}

func buildExpr(kit *tactics.Kit, spec Spec) (goal.Evaluator, error) {
	p := exprParams{Goal: tactics.KindWander}
	if err := decode(spec.Params, &p); err != nil {
		return nil, err
	}
	if p.Expression == "" {
		return nil, fmt.Errorf("expr evaluator needs an expression")
	}
	if p.Name == "" {
		p.Name = "expr:" + p.Goal
	}
	kind, build, err := tactics.GoalFor(p.Goal, p.Item, domain.Vec2{X: p.X, Y: p.Y})
	if err != nil {
		return nil, err
	}
	return tactics.NewExprEvaluator(kit, p.Name, p.Expression, spec.Bias, kind, build)
}
