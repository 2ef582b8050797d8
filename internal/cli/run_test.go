package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tactic/internal/cli"
	redisstore "github.com/aretw0/tactic/internal/adapters/redis"
)

const patrol = `
name: patrol
seed: 9
graph:
  nodes:
    - {x: 0, y: 0}
    - {x: 1, y: 0}
    - {x: 2, y: 0, item: health}
  edges:
    - {from: 0, to: 1, cost: 1, bidirectional: true}
    - {from: 1, to: 2, cost: 1, bidirectional: true}
agents:
  - id: medic
    start: 0
    health: 30
    evaluators:
      - kind: health
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patrol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// syncBuffer is a bytes.Buffer safe for the watch goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunOnce(t *testing.T) {
	var out bytes.Buffer
	err := cli.RunOnce(context.Background(), cli.RunOptions{
		ScenarioPath: writeScenario(t, patrol),
		Ticks:        60,
		Events:       true,
		Out:          &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "medic")
	assert.Contains(t, text, "arbitrate health")
	assert.Contains(t, text, "search    dijkstra 0 -> 2: found")
	assert.Contains(t, text, "# Run report: patrol")
	assert.Contains(t, text, "Completed **60** ticks.")
	assert.Regexp(t, `\| medic \| \([0-9.-]+, [0-9.-]+\) \| 100 \|`, text)
}

func TestRunOnce_Errors(t *testing.T) {
	err := cli.RunOnce(context.Background(), cli.RunOptions{Quiet: true})
	assert.ErrorContains(t, err, "--scenario")

	err = cli.RunOnce(context.Background(), cli.RunOptions{
		ScenarioPath: writeScenario(t, "agents: [{start: 3}]\ngraph: {nodes: [{x: 0, y: 0}]}\n"),
		Quiet:        true,
	})
	assert.ErrorContains(t, err, "start node 3 does not exist")
}

func TestRunOnce_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	err := cli.RunOnce(context.Background(), cli.RunOptions{
		ScenarioPath: writeScenario(t, patrol),
		Ticks:        5,
		Quiet:        true,
		Redis:        cli.RedisOptions{Addr: mr.Addr()},
	})
	require.NoError(t, err)

	store := redisstore.New(mr.Addr(), "", 0)
	defer store.Close()
	snap, err := store.Load(context.Background(), "medic")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), snap.Tick)
	assert.False(t, mr.Exists("tactic:lock:world:patrol"), "lock released after the run")
}

func TestRunWatch_Reloads(t *testing.T) {
	path := writeScenario(t, patrol)
	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, cli.RunOptions{ScenarioPath: path, Ticks: 5, Watch: true, Quiet: true, Out: out})
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Waiting for changes"))
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(patrol+"\n"), 0o644))
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Change detected in 'patrol.yaml'"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
