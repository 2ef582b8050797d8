// Package scenario reads world descriptions: a navigation graph, the agents
// placed on it and how their searches are budgeted.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/registry"
)

// Defaults applied by Load when a field is left out.
const (
	DefaultSpeed     = 1.0
	DefaultMaxHealth = 100.0
)

// Scenario is the root of a scenario file.
type Scenario struct {
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Seed        uint64      `json:"seed,omitempty" yaml:"seed,omitempty"`
	Graph       GraphSpec   `json:"graph" yaml:"graph"`
	Agents      []AgentSpec `json:"agents" yaml:"agents"`
	Search      SearchSpec  `json:"search,omitempty" yaml:"search,omitempty"`
	StuckMargin string      `json:"stuck_margin,omitempty" yaml:"stuck_margin,omitempty"`
	// ArbitrateEvery forces re-arbitration every n ticks. Zero waits for goals to drain.
	ArbitrateEvery int `json:"arbitrate_every,omitempty" yaml:"arbitrate_every,omitempty"`
	// MaxReplans bounds how often a stalled move replans. Nil keeps the default.
	MaxReplans *int      `json:"max_replans,omitempty" yaml:"max_replans,omitempty"`
	World      WorldSpec `json:"world,omitempty" yaml:"world,omitempty"`
}

// WorldSpec tunes the headless simulation.
type WorldSpec struct {
	// TickDuration is simulated time per tick, e.g. "100ms".
	TickDuration string `json:"tick_duration,omitempty" yaml:"tick_duration,omitempty"`
	// RespawnTicks is how long a picked-up item stays gone.
	RespawnTicks int        `json:"respawn_ticks,omitempty" yaml:"respawn_ticks,omitempty"`
	Walls        []WallSpec `json:"walls,omitempty" yaml:"walls,omitempty"`
}

// WallSpec is a segment that blocks walking and line of sight.
type WallSpec struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

type GraphSpec struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`
	Edges []EdgeSpec `json:"edges" yaml:"edges"`
}

type NodeSpec struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Item string  `json:"item,omitempty" yaml:"item,omitempty"`
}

// EdgeSpec is a directed edge unless Bidirectional is set.
type EdgeSpec struct {
	From          int     `json:"from" yaml:"from"`
	To            int     `json:"to" yaml:"to"`
	Cost          float64 `json:"cost" yaml:"cost"`
	Behavior      string  `json:"behavior,omitempty" yaml:"behavior,omitempty"`
	Payload       int     `json:"payload,omitempty" yaml:"payload,omitempty"`
	Bidirectional bool    `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`
}

type AgentSpec struct {
	ID         string          `json:"id,omitempty" yaml:"id,omitempty"`
	Start      int             `json:"start" yaml:"start"`
	Speed      float64         `json:"speed,omitempty" yaml:"speed,omitempty"`
	MaxHealth  float64         `json:"max_health,omitempty" yaml:"max_health,omitempty"`
	Health     float64         `json:"health,omitempty" yaml:"health,omitempty"`
	Evaluators []registry.Spec `json:"evaluators" yaml:"evaluators"`
}

type SearchSpec struct {
	CyclesPerTick   int    `json:"cycles_per_tick,omitempty" yaml:"cycles_per_tick,omitempty"`
	Algorithm       string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	CheckAdmissible bool   `json:"check_admissible,omitempty" yaml:"check_admissible,omitempty"`
	Smoothing       string `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
}

// Load reads a scenario from a .yaml, .yml or .json file and fills defaults.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes data in the given format ("yaml" or "json") and fills defaults.
func Parse(data []byte, format string) (*Scenario, error) {
	var s Scenario
	switch format {
	case "json":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", format)
	}
	s.applyDefaults()
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	for i := range s.Agents {
		a := &s.Agents[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Speed == 0 {
			a.Speed = DefaultSpeed
		}
		if a.MaxHealth == 0 {
			a.MaxHealth = DefaultMaxHealth
		}
		if a.Health == 0 {
			a.Health = a.MaxHealth
		}
	}
	if s.Search.Algorithm == "" {
		s.Search.Algorithm = "astar"
	}
}

// Margin parses StuckMargin. An empty value yields def.
func (s *Scenario) Margin(def time.Duration) (time.Duration, error) {
	if s.StuckMargin == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s.StuckMargin)
	if err != nil {
		return 0, fmt.Errorf("stuck_margin: %w", err)
	}
	return d, nil
}

// Tick parses World.TickDuration. An empty value yields def.
func (s *Scenario) Tick(def time.Duration) (time.Duration, error) {
	if s.World.TickDuration == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s.World.TickDuration)
	if err != nil {
		return 0, fmt.Errorf("world.tick_duration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("world.tick_duration must be positive")
	}
	return d, nil
}

// BuildGraph converts the graph section into a sparse graph. It stops at the
// first invalid edge; use Validate to collect every problem.
func (s *Scenario) BuildGraph() (*graph.Sparse, error) {
	g := graph.NewSparse()
	for _, n := range s.Graph.Nodes {
		g.AddNode(domain.Vec2{X: n.X, Y: n.Y}, n.Item)
	}
	for i, e := range s.Graph.Edges {
		b, err := domain.ParseBehavior(e.Behavior)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edge := graph.Edge{From: e.From, To: e.To, Cost: e.Cost, Behavior: b, Payload: e.Payload}
		if e.Bidirectional {
			err = g.AddBidirectional(edge)
		} else {
			err = g.AddEdge(edge)
		}
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return g, nil
}

// Node returns the position of node i, if it exists.
func (s *Scenario) Node(i int) (domain.Vec2, bool) {
	if i < 0 || i >= len(s.Graph.Nodes) {
		return domain.Vec2{}, false
	}
	n := s.Graph.Nodes[i]
	return domain.Vec2{X: n.X, Y: n.Y}, true
}
