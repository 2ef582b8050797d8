package cli

import (
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/tactic"
	redisstore "github.com/aretw0/tactic/internal/adapters/redis"
	"github.com/aretw0/tactic/pkg/adapters/memory"
	redislock "github.com/aretw0/tactic/pkg/adapters/redis"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/ports"
	"github.com/aretw0/tactic/pkg/scenario"
	"github.com/aretw0/tactic/pkg/session"
)

// LockPrefix namespaces distributed locks in Redis; keys become tactic:lock:<key>.
const LockPrefix = "tactic:"

// Backend bundles snapshot persistence with the session manager guarding it.
type Backend struct {
	Store    ports.SnapshotStore
	Sessions *session.Manager
	close    func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewBackend uses Redis for snapshots and locks when an address is set,
// and process memory otherwise.
func NewBackend(redis RedisOptions, logger *slog.Logger) *Backend {
	if redis.Addr == "" {
		store := memory.NewStore()
		return &Backend{
			Store:    store,
			Sessions: session.NewManager(store, session.WithLogger(logger)),
		}
	}

	client := backend.NewClient(&backend.Options{
		Addr:     redis.Addr,
		Password: redis.Password,
		DB:       redis.DB,
	})
	storeOpts := []redisstore.Option{}
	if redis.TTL > 0 {
		storeOpts = append(storeOpts, redisstore.WithTTL(redis.TTL))
	}
	store := redisstore.NewFromClient(client, storeOpts...)
	logger.Info("Using Redis backend", "addr", redis.Addr, "db", redis.DB)
	return &Backend{
		Store: store,
		Sessions: session.NewManager(store,
			session.WithLocker(redislock.NewLocker(client, LockPrefix)),
			session.WithLogger(logger),
		),
		close: store.Close,
	}
}

// LoadScheduler reads the scenario at path and builds a scheduler for it.
func LoadScheduler(path string, opts ...tactic.Option) (*tactic.Scheduler, *scenario.Scenario, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("no scenario given: use --scenario")
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := tactic.New(sc, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, sc, nil
}

// SchedulerOptions assembles the common scheduler options.
func SchedulerOptions(logger *slog.Logger, store ports.SnapshotStore, hooks domain.LifecycleHooks) []tactic.Option {
	opts := []tactic.Option{
		tactic.WithLogger(logger),
		tactic.WithLifecycleHooks(hooks),
	}
	if store != nil {
		opts = append(opts, tactic.WithStore(store))
	}
	return opts
}
