package scenario_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/scenario"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const arena = `
name: arena
seed: 7
stuck_margin: 2s
search:
  cycles_per_tick: 20
  smoothing: quick
graph:
  nodes:
    - {x: 0, y: 0}
    - {x: 1, y: 0}
    - {x: 1, y: 1, item: health}
  edges:
    - {from: 0, to: 1, cost: 1, bidirectional: true}
    - {from: 1, to: 2, cost: 1.5, behavior: jump, payload: 3}
agents:
  - id: scout
    start: 0
    evaluators:
      - kind: explore
      - kind: health
        bias: 2
        params:
          item: health
  - start: 1
    speed: 3
    health: 40
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	s, err := scenario.Load(writeFile(t, "arena.yaml", arena))
	require.NoError(t, err)

	assert.Equal(t, "arena", s.Name)
	assert.Equal(t, uint64(7), s.Seed)
	assert.Equal(t, 20, s.Search.CyclesPerTick)
	assert.Equal(t, "astar", s.Search.Algorithm, "default algorithm")
	require.Len(t, s.Agents, 2)

	scout := s.Agents[0]
	assert.Equal(t, "scout", scout.ID)
	assert.Equal(t, scenario.DefaultSpeed, scout.Speed)
	assert.Equal(t, scenario.DefaultMaxHealth, scout.MaxHealth)
	assert.Equal(t, scout.MaxHealth, scout.Health)
	require.Len(t, scout.Evaluators, 2)
	assert.Equal(t, 2.0, scout.Evaluators[1].Bias)
	assert.Equal(t, "health", scout.Evaluators[1].Params["item"])

	anon := s.Agents[1]
	_, err = uuid.Parse(anon.ID)
	assert.NoError(t, err, "missing ids are generated")
	assert.Equal(t, 40.0, anon.Health)

	margin, err := s.Margin(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, margin)

	g, err := s.BuildGraph()
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Len(t, g.Edges(1), 2, "reverse of the bidirectional edge plus the jump")
	jump := g.Edges(1)[1]
	assert.Equal(t, domain.BehaviorJump, jump.Behavior)
	assert.Equal(t, 3, jump.Payload)
	assert.Equal(t, "health", g.Node(2).Item)
}

func TestLoad_JSON(t *testing.T) {
	body := `{"graph":{"nodes":[{"x":0,"y":0},{"x":3,"y":4}],"edges":[{"from":0,"to":1,"cost":5}]},
		"agents":[{"id":"a","start":1,"evaluators":[{"kind":"wander"}]}]}`
	s, err := scenario.Load(writeFile(t, "tiny.json", body))
	require.NoError(t, err)

	pos, ok := s.Node(1)
	require.True(t, ok)
	assert.Equal(t, domain.Vec2{X: 3, Y: 4}, pos)
	_, ok = s.Node(2)
	assert.False(t, ok)

	margin, err := s.Margin(time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, margin)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		_, err := scenario.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := scenario.Load(writeFile(t, "bad.yaml", "graph: [1, 2"))
		assert.Error(t, err)
	})

	t.Run("Unsupported Format", func(t *testing.T) {
		_, err := scenario.Parse([]byte("{}"), "toml")
		assert.Error(t, err)
	})

	t.Run("Bad Edge", func(t *testing.T) {
		s, err := scenario.Parse([]byte("graph:\n  nodes: [{x: 0, y: 0}]\n  edges: [{from: 0, to: 4, cost: 1}]\n"), "yaml")
		require.NoError(t, err)
		_, err = s.BuildGraph()
		assert.ErrorIs(t, err, domain.ErrInvalidGraph)
	})

	t.Run("Bad Margin", func(t *testing.T) {
		s := &scenario.Scenario{StuckMargin: "later"}
		_, err := s.Margin(time.Second)
		assert.Error(t, err)
	})
}
