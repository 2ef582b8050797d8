package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/tactic"
	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/internal/presentation/tui"
	"github.com/aretw0/tactic/pkg/domain"
)

// DefaultTicks is how long a headless run lasts when --ticks is not set.
const DefaultTicks = 200

// RedisOptions selects the Redis backend. An empty Addr disables it.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ScenarioPath string
	Ticks        int
	Watch        bool
	Events       bool
	Quiet        bool
	Redis        RedisOptions
	Logger       *slog.Logger
	// Out receives events and the report. Defaults to os.Stdout.
	Out io.Writer
	// Styled renders the report with glamour.
	Styled bool
}

func (o *RunOptions) defaults() {
	if o.Ticks <= 0 {
		o.Ticks = DefaultTicks
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
}

// Execute handles the run command, dispatching to a single run or watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	if opts.Watch {
		return RunWatch(ctx, opts)
	}
	return RunOnce(ctx, opts)
}

// RunOnce loads the scenario, advances it opts.Ticks ticks and prints the report.
func RunOnce(ctx context.Context, opts RunOptions) error {
	opts.defaults()
	if !opts.Quiet {
		tui.PrintBanner(opts.Out)
	}

	be := NewBackend(opts.Redis, opts.Logger)
	defer be.Close()

	var hooks domain.LifecycleHooks
	if opts.Events {
		hooks = eventHooks(opts.Out)
	}
	sched, sc, err := LoadScheduler(opts.ScenarioPath, SchedulerOptions(opts.Logger, be.Store, hooks)...)
	if err != nil {
		return err
	}
	opts.Logger.Info("Scenario loaded", "scenario", sc.Name, "agents", len(sc.Agents), "ticks", opts.Ticks)

	runErr := runTicks(ctx, sched, be, opts.Ticks)
	if errors.Is(runErr, context.Canceled) {
		printSystemMessage(opts.Out, "Interrupted at tick %d.", sched.CurrentTick())
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}

	if opts.Quiet {
		return nil
	}
	report := tui.Report(sched.Name(), sched.CurrentTick(), sched.Snapshots(), sched.Items())
	return tui.Print(opts.Out, report, opts.Styled)
}

// runTicks advances one tick at a time under a lock named after the scenario.
// Runs of the same scenario against one Redis take turns tick by tick, but
// each still advances its own world and overwrites the shared agent snapshots.
func runTicks(ctx context.Context, sched *tactic.Scheduler, be *Backend, n int) error {
	key := "world:" + sched.Name()
	for i := 0; i < n; i++ {
		err := be.Sessions.WithLock(ctx, key, func(ctx context.Context) error {
			return sched.Tick(ctx)
		})
		if err != nil {
			return fmt.Errorf("tick %d: %w", sched.CurrentTick()+1, err)
		}
	}
	return nil
}
