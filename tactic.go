package tactic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/internal/runtime"
	"github.com/aretw0/tactic/internal/validator"
	"github.com/aretw0/tactic/pkg/dispatch"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/goal"
	"github.com/aretw0/tactic/pkg/graph"
	"github.com/aretw0/tactic/pkg/pathing"
	"github.com/aretw0/tactic/pkg/ports"
	"github.com/aretw0/tactic/pkg/registry"
	"github.com/aretw0/tactic/pkg/scenario"
	"github.com/aretw0/tactic/pkg/search"
	"github.com/aretw0/tactic/pkg/tactics"
)

// Scheduler is the high-level entry point. It owns the world, the message
// dispatcher, the shared path manager and one goal tree per agent, and
// advances them together one tick at a time. It is safe for concurrent use.
type Scheduler struct {
	mu sync.Mutex

	name   string
	world  *runtime.World
	disp   *dispatch.Dispatcher
	paths  *pathing.Manager
	agents map[string]*agent
	order  []string

	registry       *registry.Registry
	store          ports.SnapshotStore
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	budget         int
	arbitrateEvery uint64
	tieBreak       goal.TieBreak
}

type agent struct {
	body    *runtime.Body
	think   *goal.Think
	kit     *tactics.Kit
	planner *pathing.Planner
}

// Option defines a functional option for configuring the Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks for goals, arbitration and searches.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) {
		s.hooks = hooks
	}
}

// WithSearchBudget overrides the scenario's search cycles per tick.
func WithSearchBudget(cycles int) Option {
	return func(s *Scheduler) {
		s.budget = cycles
	}
}

// WithStore saves a snapshot of every agent after each tick.
func WithStore(store ports.SnapshotStore) Option {
	return func(s *Scheduler) {
		s.store = store
	}
}

// WithRegistry replaces the built-in evaluator kinds.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Scheduler) {
		s.registry = reg
	}
}

// WithArbitrationInterval re-arbitrates every n ticks even while a goal is
// running. Zero arbitrates only when an agent's goals drain. It overrides the
// scenario's arbitrate_every.
func WithArbitrationInterval(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.arbitrateEvery = uint64(n)
		}
	}
}

// WithTieBreak sets how arbitrators resolve equal scores.
func WithTieBreak(tb goal.TieBreak) Option {
	return func(s *Scheduler) {
		s.tieBreak = tb
	}
}

// New validates sc and builds a scheduler for it.
func New(sc *scenario.Scenario, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		name:     sc.Name,
		agents:   make(map[string]*agent),
		registry: registry.Default(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.name != "" {
		s.logger = s.logger.With("scenario", s.name)
	}

	if err := validator.Validate(sc, s.registry).Err(); err != nil {
		return nil, err
	}
	g, err := sc.BuildGraph()
	if err != nil {
		return nil, err
	}
	tick, err := sc.Tick(runtime.DefaultTickDuration)
	if err != nil {
		return nil, err
	}
	margin, err := sc.Margin(tactics.DefaultStuckMargin)
	if err != nil {
		return nil, err
	}

	worldOpts := []runtime.Option{
		runtime.WithTickDuration(tick),
		runtime.WithSeed(sc.Seed),
		runtime.WithLogger(s.logger),
	}
	if sc.World.RespawnTicks > 0 {
		worldOpts = append(worldOpts, runtime.WithRespawnTicks(sc.World.RespawnTicks))
	}
	for _, w := range sc.World.Walls {
		worldOpts = append(worldOpts, runtime.WithWalls(runtime.Wall{
			A: domain.Vec2{X: w.X1, Y: w.Y1},
			B: domain.Vec2{X: w.X2, Y: w.Y2},
		}))
	}
	s.world = runtime.NewWorld(g, worldOpts...)

	clock := worldClock{s.world}
	s.disp = dispatch.New(dispatch.WithClock(clock), dispatch.WithLogger(s.logger))
	s.disp.Register(tactics.WorldReceiver, dispatch.ReceiverFunc(s.handleWorldMessage))

	if s.budget <= 0 {
		s.budget = sc.Search.CyclesPerTick
	}
	if s.arbitrateEvery == 0 && sc.ArbitrateEvery > 0 {
		s.arbitrateEvery = uint64(sc.ArbitrateEvery)
	}
	s.paths = pathing.NewManager(s.budget, pathing.WithManagerLogger(s.logger))

	for i, spec := range sc.Agents {
		if err := s.spawn(i, spec, sc, clock, margin); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("scheduler ready", "agents", len(s.order), "nodes", g.NodeCount())
	return s, nil
}

func (s *Scheduler) spawn(i int, spec scenario.AgentSpec, sc *scenario.Scenario, clock ports.Clock, margin time.Duration) error {
	pos, _ := sc.Node(spec.Start)
	body := s.world.Spawn(spec.ID, pos, spec.Speed, spec.Health, spec.MaxHealth)

	env := goal.NewEnv(body)
	env.Logger = s.logger
	env.Hooks = s.hooks
	env.Clock = clock

	planner := pathing.NewPlanner(body, s.world.Graph(), s.paths, s.disp,
		pathing.WithAlgorithm(search.Algorithm(sc.Search.Algorithm)),
		pathing.WithLogger(s.logger),
		pathing.WithHooks(s.hooks),
		pathing.WithClock(clock),
		pathing.WithItemActive(s.world.ItemActive),
		pathing.WithAdmissibilityCheck(sc.Search.CheckAdmissible),
		pathing.WithSmoothing(smoothingMode(sc.Search.Smoothing)),
	)

	kit := tactics.NewKit(env, planner, sc.Seed+uint64(i)+1)
	kit.StuckMargin = margin
	if sc.MaxReplans != nil {
		kit.MaxReplans = *sc.MaxReplans
	}
	kit.Sender = s.disp
	kit.Tick = s.world.Tick

	evs, err := s.registry.BuildAll(kit, spec.Evaluators)
	if err != nil {
		return fmt.Errorf("agent %s: %w", spec.ID, err)
	}

	a := &agent{
		body:    body,
		think:   goal.NewThink(env, evs, goal.WithTieBreak(s.tieBreak)),
		kit:     kit,
		planner: planner,
	}
	s.agents[spec.ID] = a
	s.order = append(s.order, spec.ID)
	s.disp.Register(spec.ID, dispatch.ReceiverFunc(a.handleMessage))
	return nil
}

func smoothingMode(name string) pathing.Smoothing {
	switch name {
	case "quick":
		return pathing.SmoothQuickMode
	case "precise":
		return pathing.SmoothPreciseMode
	}
	return pathing.SmoothNone
}

// Name returns the scenario name.
func (s *Scheduler) Name() string { return s.name }

// Tick advances the simulation one step: due messages are delivered, pending
// searches spend the cycle budget, every agent processes its goal tree, and
// finally bodies move and collect items.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick(ctx)
}

// Run advances n ticks, stopping early when ctx is done.
func (s *Scheduler) Run(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		if err := s.tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.disp.Flush()
	s.paths.Update()

	next := s.world.Tick() + 1
	for _, id := range s.order {
		a := s.agents[id]
		a.think.Process()
		if s.arbitrateEvery > 0 && next%s.arbitrateEvery == 0 && !a.body.Possessed() {
			a.think.Arbitrate()
		}
	}

	for _, p := range s.world.Step() {
		for _, id := range s.order {
			if id == p.Body {
				continue
			}
			msg := domain.Message{Kind: domain.MsgItemGone, Sender: tactics.WorldReceiver, Receiver: id, Payload: p.Node}
			if err := s.disp.Dispatch(msg); err != nil {
				s.logger.Warn("item notification not delivered", "agent", id, "err", err)
			}
		}
	}

	if s.store == nil {
		return nil
	}
	for _, id := range s.order {
		if err := s.store.Save(ctx, id, s.snapshot(id)); err != nil {
			return fmt.Errorf("save snapshot %s: %w", id, err)
		}
	}
	return nil
}

// CurrentTick returns the number of completed ticks.
func (s *Scheduler) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Tick()
}

// Agents returns agent ids in scenario order.
func (s *Scheduler) Agents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Graph returns the navigation graph.
func (s *Scheduler) Graph() graph.Graph { return s.world.Graph() }

// Items maps every item node to whether its item is available.
func (s *Scheduler) Items() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Items()
}

// Snapshot returns the live state of one agent.
func (s *Scheduler) Snapshot(id string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return nil, fmt.Errorf("agent %q: %w", id, domain.ErrAgentNotFound)
	}
	return s.snapshot(id), nil
}

// Snapshots returns the live state of every agent in scenario order.
func (s *Scheduler) Snapshots() []*domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.snapshot(id))
	}
	return out
}

func (s *Scheduler) snapshot(id string) *domain.Snapshot {
	a := s.agents[id]
	snap := domain.NewSnapshot(id)
	snap.Tick = s.world.Tick()
	snap.SavedAt = s.world.Now()
	snap.Position = a.body.Position()
	snap.Health = a.body.Health()
	snap.Goals = goal.Chain(a.think)
	snap.LastEvaluator, snap.LastScore = a.think.LastArbitration()
	snap.Possessed = a.body.Possessed()
	return snap
}

// Deliver sends msg through the dispatcher. A future DispatchAt delays it.
func (s *Scheduler) Deliver(msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[msg.Receiver]; !ok && msg.Receiver != tactics.WorldReceiver {
		return fmt.Errorf("deliver %s: agent %q: %w", msg.Kind, msg.Receiver, domain.ErrAgentNotFound)
	}
	if msg.Sender == "" {
		msg.Sender = "host"
	}
	return s.disp.Dispatch(msg)
}

// Command replaces a possessed agent's goals with a move to dest, or queues
// it behind the current ones when queue is set.
func (s *Scheduler) Command(id string, dest domain.Vec2, queue bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return fmt.Errorf("agent %q: %w", id, domain.ErrAgentNotFound)
	}
	if !a.body.Possessed() {
		return fmt.Errorf("agent %q is not possessed", id)
	}
	g := tactics.NewMoveToPosition(a.kit, dest)
	if queue {
		a.think.Queue(g)
	} else {
		a.think.Replace(g)
	}
	return nil
}

// FindPath runs a one-shot search on the scheduler's graph.
func (s *Scheduler) FindPath(ctx context.Context, req PathRequest) (*PathResult, error) {
	res, err := FindPath(ctx, s.world.Graph(), req)
	if err != nil {
		return nil, err
	}
	if hook := s.hooks.OnSearchResolve; hook != nil {
		hook(ctx, res.event(s.world.Now()))
	}
	return res, nil
}

func (s *Scheduler) handleWorldMessage(msg domain.Message) bool {
	switch msg.Kind {
	case domain.MsgOpenDoor:
		id, ok := domain.PayloadInt(msg.Payload)
		if !ok {
			return false
		}
		s.world.OpenDoor(id)
		return true
	}
	return false
}

func (a *agent) handleMessage(msg domain.Message) bool {
	switch msg.Kind {
	case domain.MsgPossess:
		a.body.SetPossessed(true)
		a.think.RemoveAllSubgoals()
		return true
	case domain.MsgRelease:
		a.body.SetPossessed(false)
		a.think.RemoveAllSubgoals()
		a.think.SetStatus(domain.StatusInactive)
		return true
	case domain.MsgTakeDamage:
		amount, ok := domain.PayloadFloat(msg.Payload)
		if !ok {
			return false
		}
		a.body.Damage(amount)
		return true
	}
	return a.think.HandleMessage(msg)
}

type worldClock struct {
	w *runtime.World
}

func (c worldClock) Now() time.Time { return c.w.Now() }
