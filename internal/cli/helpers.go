package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/tactic/internal/presentation/tui"
	"github.com/aretw0/tactic/internal/runtime"
	"github.com/aretw0/tactic/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// eventHooks prints goal and search events as they happen, stamped with
// simulated time.
func eventHooks(w io.Writer) domain.LifecycleHooks {
	var mu sync.Mutex
	line := func(e domain.EventBase, format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "[%8s] %-10s %s\n", e.Timestamp.Sub(runtime.Epoch), e.AgentID, fmt.Sprintf(format, args...))
	}
	return domain.LifecycleHooks{
		OnGoalActivate: func(_ context.Context, e *domain.GoalEvent) {
			line(e.EventBase, "activate  %s", e.Kind)
		},
		OnGoalTerminate: func(_ context.Context, e *domain.GoalEvent) {
			line(e.EventBase, "terminate %s (%s)", e.Kind, tui.StatusString(e.Status))
		},
		OnArbitrate: func(_ context.Context, e *domain.ArbitrationEvent) {
			line(e.EventBase, "arbitrate %s = %.3f", e.Evaluator, e.Score)
		},
		OnSearchResolve: func(_ context.Context, e *domain.SearchEvent) {
			line(e.EventBase, "search    %s %d -> %d: %s after %d steps", e.Algorithm, e.Source, e.Target, e.Outcome, e.Steps)
		},
	}
}
