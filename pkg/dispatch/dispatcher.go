// Package dispatch routes messages to agents, immediately or after a delay.
package dispatch

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tactic/internal/logging"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/ports"
)

// Receiver consumes messages addressed to it.
type Receiver interface {
	HandleMessage(msg domain.Message) bool
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(msg domain.Message) bool

func (f ReceiverFunc) HandleMessage(msg domain.Message) bool { return f(msg) }

// Dispatcher delivers messages to registered receivers. Delayed messages are
// held until Flush observes that they are due.
type Dispatcher struct {
	mu        sync.Mutex
	receivers map[string]Receiver
	delayed   delayQueue
	seq       uint64

	clock  ports.Clock
	logger *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the time source used for delayed delivery.
func WithClock(c ports.Clock) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates an empty dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		receivers: make(map[string]Receiver),
		clock:     ports.SystemClock{},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register makes r the receiver for id, replacing any previous one.
func (d *Dispatcher) Register(id string, r Receiver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receivers[id] = r
}

// Unregister removes the receiver for id. Pending delayed messages for it are dropped on delivery.
func (d *Dispatcher) Unregister(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.receivers, id)
}

// Dispatch delivers msg now, or queues it when msg.DispatchAt is in the future.
func (d *Dispatcher) Dispatch(msg domain.Message) error {
	if !msg.DispatchAt.IsZero() && msg.DispatchAt.After(d.clock.Now()) {
		d.mu.Lock()
		d.seq++
		heap.Push(&d.delayed, &pending{msg: msg, seq: d.seq})
		d.mu.Unlock()
		return nil
	}
	return d.deliver(msg)
}

// DispatchAfter queues msg for delivery once delay has elapsed.
func (d *Dispatcher) DispatchAfter(msg domain.Message, delay time.Duration) error {
	msg.DispatchAt = d.clock.Now().Add(delay)
	return d.Dispatch(msg)
}

// Flush delivers every delayed message that is due and returns how many were
// delivered. Messages addressed to missing receivers are logged and dropped.
func (d *Dispatcher) Flush() int {
	now := d.clock.Now()
	delivered := 0
	for {
		d.mu.Lock()
		if d.delayed.Len() == 0 || d.delayed[0].msg.DispatchAt.After(now) {
			d.mu.Unlock()
			return delivered
		}
		p := heap.Pop(&d.delayed).(*pending)
		d.mu.Unlock()

		if err := d.deliver(p.msg); err != nil {
			d.logger.Warn("delayed message dropped", "kind", p.msg.Kind, "receiver", p.msg.Receiver, "err", err)
			continue
		}
		delivered++
	}
}

// Pending returns the number of queued delayed messages.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delayed.Len()
}

func (d *Dispatcher) deliver(msg domain.Message) error {
	d.mu.Lock()
	r, ok := d.receivers[msg.Receiver]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("deliver %s to %q: %w", msg.Kind, msg.Receiver, domain.ErrAgentNotFound)
	}
	if !r.HandleMessage(msg) {
		d.logger.Debug("message not handled", "kind", msg.Kind, "receiver", msg.Receiver, "sender", msg.Sender)
	}
	return nil
}

type pending struct {
	msg domain.Message
	seq uint64
}

// delayQueue orders by due time, then by dispatch order.
type delayQueue []*pending

func (q delayQueue) Len() int { return len(q) }

func (q delayQueue) Less(i, j int) bool {
	if !q[i].msg.DispatchAt.Equal(q[j].msg.DispatchAt) {
		return q[i].msg.DispatchAt.Before(q[j].msg.DispatchAt)
	}
	return q[i].seq < q[j].seq
}

func (q delayQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *delayQueue) Push(x any) { *q = append(*q, x.(*pending)) }

func (q *delayQueue) Pop() any {
	old := *q
	p := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return p
}
