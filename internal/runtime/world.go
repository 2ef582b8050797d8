// Package runtime is the headless world agents live in: kinematic bodies that
// follow their steering modes, walls, and respawning items on graph nodes.
package runtime

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/graph"
)

// Defaults for a World.
const (
	DefaultTickDuration = 100 * time.Millisecond
	DefaultRespawnTicks = 50
	// ArrivalTolerance is how close a body must be to count as at a position.
	ArrivalTolerance = 0.05
)

// Epoch is the simulated time at tick zero.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Wall blocks walking and sight between its endpoints.
type Wall struct {
	A, B domain.Vec2
}

// Pickup reports a body collecting an item.
type Pickup struct {
	Body string
	Node int
	Item string
}

type itemState struct {
	item      string
	active    bool
	respawnAt uint64
}

// World owns every body and item. It is not safe for concurrent use.
type World struct {
	g       graph.Graph
	walls   []Wall
	bodies  map[string]*Body
	order   []string
	items   map[int]*itemState
	doors   map[int]bool
	tick    uint64
	dt      time.Duration
	respawn uint64
	rng     *rand.Rand
	logger  *slog.Logger
}

// Option configures a World.
type Option func(*World)

// WithTickDuration sets simulated time per tick.
func WithTickDuration(d time.Duration) Option {
	return func(w *World) {
		if d > 0 {
			w.dt = d
		}
	}
}

// WithRespawnTicks sets how many ticks a picked item stays inactive.
func WithRespawnTicks(n int) Option {
	return func(w *World) {
		if n >= 0 {
			w.respawn = uint64(n)
		}
	}
}

// WithWalls places obstacles.
func WithWalls(walls ...Wall) Option {
	return func(w *World) {
		w.walls = append(w.walls, walls...)
	}
}

// WithSeed seeds wander jitter.
func WithSeed(seed uint64) Option {
	return func(w *World) {
		w.rng = rand.New(rand.NewPCG(seed, seed+1))
	}
}

// WithLogger sets the world logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// NewWorld creates a world over g. Every node with an item tag starts with
// that item available.
func NewWorld(g graph.Graph, opts ...Option) *World {
	w := &World{
		g:       g,
		bodies:  make(map[string]*Body),
		items:   make(map[int]*itemState),
		doors:   make(map[int]bool),
		dt:      DefaultTickDuration,
		respawn: DefaultRespawnTicks,
		rng:     rand.New(rand.NewPCG(1, 2)),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	for i := 0; i < g.NodeCount(); i++ {
		if item := g.Node(i).Item; item != "" {
			w.items[i] = &itemState{item: item, active: true}
		}
	}
	return w
}

// Graph returns the navigation graph.
func (w *World) Graph() graph.Graph { return w.g }

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 { return w.tick }

// Now is the simulated time, Epoch plus one tick duration per step.
func (w *World) Now() time.Time { return Epoch.Add(time.Duration(w.tick) * w.dt) }

// TickDuration returns simulated time per tick.
func (w *World) TickDuration() time.Duration { return w.dt }

// Spawn adds a body at pos. An existing body with the same id is replaced.
func (w *World) Spawn(id string, pos domain.Vec2, speed, health, maxHealth float64) *Body {
	b := &Body{
		id:        id,
		pos:       pos,
		target:    pos,
		speed:     speed,
		health:    health,
		maxHealth: maxHealth,
		modes:     make(map[domain.Steering]bool),
		world:     w,
	}
	if _, ok := w.bodies[id]; !ok {
		w.order = append(w.order, id)
	}
	w.bodies[id] = b
	return b
}

// Body returns the body with id.
func (w *World) Body(id string) (*Body, bool) {
	b, ok := w.bodies[id]
	return b, ok
}

// Bodies returns every body in spawn order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.bodies[id])
	}
	return out
}

// ItemActive reports whether node holds an available item.
func (w *World) ItemActive(node int) bool {
	it, ok := w.items[node]
	return ok && it.active
}

// Items maps every item node to whether its item is available.
func (w *World) Items() map[int]bool {
	out := make(map[int]bool, len(w.items))
	for n, it := range w.items {
		out[n] = it.active
	}
	return out
}

// OpenDoor records door id as open.
func (w *World) OpenDoor(id int) {
	if !w.doors[id] {
		w.logger.Debug("door opened", "door", id)
	}
	w.doors[id] = true
}

// DoorOpen reports whether door id has been opened.
func (w *World) DoorOpen(id int) bool { return w.doors[id] }

// Step advances the world one tick: bodies move, items are collected and
// respawn. It returns the pickups that happened.
func (w *World) Step() []Pickup {
	w.tick++
	for n, it := range w.items {
		if !it.active && w.tick >= it.respawnAt {
			it.active = true
			w.logger.Debug("item respawned", "node", n, "item", it.item)
		}
	}

	var picks []Pickup
	for _, id := range w.order {
		b := w.bodies[id]
		b.move(w.dt.Seconds())
		if p, ok := w.collect(b); ok {
			picks = append(picks, p)
		}
	}
	return picks
}

func (w *World) collect(b *Body) (Pickup, bool) {
	nodes := make([]int, 0, len(w.items))
	for n := range w.items {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	for _, n := range nodes {
		it := w.items[n]
		if !it.active || domain.Distance(b.pos, w.g.Node(n).Pos) > ArrivalTolerance {
			continue
		}
		it.active = false
		it.respawnAt = w.tick + w.respawn
		if it.item == "health" {
			b.health = b.maxHealth
		}
		w.logger.Debug("item collected", "agent", b.id, "node", n, "item", it.item)
		return Pickup{Body: b.id, Node: n, Item: it.item}, true
	}
	return Pickup{}, false
}

// Clear reports whether the straight segment a-b crosses no wall.
func (w *World) Clear(a, b domain.Vec2) bool {
	for _, wall := range w.walls {
		if segmentsCross(a, b, wall.A, wall.B) {
			return false
		}
	}
	return true
}

func cross(o, a, b domain.Vec2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func segmentsCross(p1, p2, q1, q2 domain.Vec2) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// speedFactor scales body speed per active movement mode.
var speedFactor = map[domain.Steering]float64{
	domain.SteerSeek:    1,
	domain.SteerArrive:  1,
	domain.SteerJump:    1.5,
	domain.SteerGrapple: 2,
	domain.SteerSwim:    0.6,
	domain.SteerCrawl:   0.4,
}

func (b *Body) move(dt float64) {
	factor := 0.0
	for mode, f := range speedFactor {
		if b.modes[mode] {
			factor = math.Max(factor, f)
		}
	}
	if factor > 0 {
		b.stepTowards(b.target, b.speed*factor*dt)
		return
	}
	if b.modes[domain.SteerWander] {
		angle := b.world.rng.Float64() * 2 * math.Pi
		next := b.pos.Add(domain.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(b.speed * dt))
		if b.world.Clear(b.pos, next) {
			b.pos = next
		}
	}
}

func (b *Body) stepTowards(target domain.Vec2, dist float64) {
	delta := target.Sub(b.pos)
	remaining := delta.Len()
	if remaining <= dist {
		b.pos = target
		return
	}
	b.pos = b.pos.Add(delta.Scale(dist / remaining))
}
