// Package batching coalesces individual keyed lookups into bounded bulk calls.
//
// DISPATCH RULES:
// A batch opens with the oldest queued request and leaves the queue when
// either of these holds, whichever comes first:
//   - Full: MaxSize requests are queued and MinimumDelay has passed since the
//     previous dispatch start (immediately if nothing was dispatched yet)
//   - Quiescent: MinimumDelay has passed since the batch opened and since the
//     previous dispatch start
//
// No batch leaves while LevelOfParallelism batches are still in flight, and
// batches always leave in the order they formed.
//
// RESOLUTION:
// Every submitted request is completed exactly once. A processor error
// rejects the unresolved items of that batch, items the processor forgets
// fail with ErrUnresolved, and items still queued at Stop fail with
// ErrStopped.
//
// A single dispatcher goroutine owns all timing decisions. Submit only appends
// to the queue under the mutex and wakes the dispatcher, so the clock can be
// swapped for a fake one in tests and advanced deterministically.
package batching

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rplus-dev/rplus/internal/logging"
)

// Metrics is a point-in-time view of a batcher's counters.
type Metrics struct {
	Queued            int   `json:"queued"`
	InFlight          int   `json:"in_flight"`
	DispatchedBatches int64 `json:"dispatched_batches"`
	FailedBatches     int64 `json:"failed_batches"`
	ResolvedItems     int64 `json:"resolved_items"`
	RejectedItems     int64 `json:"rejected_items"`
}

// Option customizes a Batcher at construction time.
type Option func(*options)

type options struct {
	clock clockwork.Clock
	name  string
}

// WithClock replaces the real clock, used by tests to drive time manually.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Batcher queues keyed requests and hands them to a Processor in batches.
// A key that is already queued and not yet dispatched shares the pending
// request instead of being queued twice.
type Batcher[K comparable, V any] struct {
	processor Processor[K, V]
	config    Config
	clock     clockwork.Clock
	name      string

	mu            sync.Mutex
	queue         []*Item[K, V]
	pending       map[K]*Item[K, V] // queued and not yet dispatched
	inFlight      int
	lastDispatch  time.Time
	hasDispatched bool
	started       bool
	stopped       bool

	wakeCh   chan struct{}
	stopCh   chan struct{}
	loopDone chan struct{}
	batchWG  sync.WaitGroup

	dispatched atomic.Int64
	failed     atomic.Int64
	resolved   atomic.Int64
	rejected   atomic.Int64
}

// NewBatcher validates config and returns a batcher that is ready to accept
// submissions. Nothing is dispatched until Start is called. A nil config
// selects DefaultConfig.
func NewBatcher[K comparable, V any](processor Processor[K, V], config *Config, opts ...Option) (*Batcher[K, V], error) {
	if processor == nil {
		return nil, fmt.Errorf("%w: processor is nil", ErrInvalidConfig)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := options{clock: clockwork.NewRealClock(), name: "batcher"}
	for _, opt := range opts {
		opt(&o)
	}

	return &Batcher[K, V]{
		processor: processor,
		config:    *config,
		clock:     o.clock,
		name:      o.name,
		pending:   make(map[K]*Item[K, V]),
		wakeCh:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		loopDone:  make(chan struct{}),
	}, nil
}

// Config returns a copy of the configuration in use.
func (b *Batcher[K, V]) Config() Config {
	return b.config
}

// Start launches the dispatcher goroutine. Calling Start more than once, or
// after Stop, does nothing.
func (b *Batcher[K, V]) Start() {
	b.mu.Lock()
	if b.started || b.stopped {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go b.run()
	logging.Debug("%s: Started (parallelism=%d, max size=%d, minimum delay=%s)",
		b.name, b.config.LevelOfParallelism, b.config.MaxSize, b.config.MinimumDelay)
}

// Stop halts dispatching, rejects every request still queued with
// ErrStopped and then waits for in-flight batches to finish. Safe to call
// more than once.
func (b *Batcher[K, V]) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	started := b.started
	b.mu.Unlock()

	close(b.stopCh)
	if started {
		<-b.loopDone
	}

	// Nothing dispatches once the loop is done, so queued requests can fail
	// without waiting on the in-flight calls
	b.mu.Lock()
	leftover := b.queue
	b.queue = nil
	b.pending = make(map[K]*Item[K, V])
	b.mu.Unlock()

	for _, item := range leftover {
		if item.Reject(ErrStopped) {
			b.rejected.Add(1)
		}
	}
	if len(leftover) > 0 {
		logging.Warn("%s: Rejected %d queued requests on stop", b.name, len(leftover))
	}

	b.batchWG.Wait()
	logging.Debug("%s: Stopped", b.name)
}

// Submit queues key and returns the handle for its result.
func (b *Batcher[K, V]) Submit(key K) *Future[V] {
	return b.SubmitMany(key)[0]
}

// SubmitMany queues all keys atomically, so they are never split across a
// dispatch boundary unless MaxSize forces it. Futures are returned in the
// order of keys; repeated keys share one future.
func (b *Batcher[K, V]) SubmitMany(keys ...K) []*Future[V] {
	futures := make([]*Future[V], len(keys))

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		for i := range futures {
			f := newFuture[V]()
			var zero V
			f.complete(zero, ErrStopped)
			b.rejected.Add(1)
			futures[i] = f
		}
		return futures
	}

	now := b.clock.Now()
	for i, key := range keys {
		if existing, ok := b.pending[key]; ok {
			futures[i] = existing.future
			continue
		}
		item := &Item[K, V]{Key: key, EnqueuedAt: now, future: newFuture[V]()}
		b.queue = append(b.queue, item)
		b.pending[key] = item
		futures[i] = item.future
	}
	b.mu.Unlock()

	b.wake()
	return futures
}

// Metrics returns the current counters.
func (b *Batcher[K, V]) Metrics() Metrics {
	b.mu.Lock()
	queued, inFlight := len(b.queue), b.inFlight
	b.mu.Unlock()

	return Metrics{
		Queued:            queued,
		InFlight:          inFlight,
		DispatchedBatches: b.dispatched.Load(),
		FailedBatches:     b.failed.Load(),
		ResolvedItems:     b.resolved.Load(),
		RejectedItems:     b.rejected.Load(),
	}
}

func (b *Batcher[K, V]) wake() {
	select {
	case b.wakeCh <- struct{}{}:
	default:
	}
}

// run is the dispatcher loop. The timer is only recreated when the next
// deadline actually moves.
func (b *Batcher[K, V]) run() {
	defer close(b.loopDone)

	var (
		timer    clockwork.Timer
		deadline time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
		}
		deadline = time.Time{}
	}
	defer stopTimer()

	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		now := b.clock.Now()
		batch, readyAt := b.take(now)
		if batch != nil {
			stopTimer()
			b.dispatch(batch)
			continue
		}

		var timerCh <-chan time.Time
		if readyAt.IsZero() {
			stopTimer()
		} else {
			if timer == nil || !readyAt.Equal(deadline) {
				stopTimer()
				timer = b.clock.NewTimer(readyAt.Sub(now))
				deadline = readyAt
			}
			timerCh = timer.Chan()
		}

		select {
		case <-b.stopCh:
			return
		case <-b.wakeCh:
		case <-timerCh:
			timer = nil
			deadline = time.Time{}
		}
	}
}

// take removes the next batch from the queue if it may leave now. Otherwise
// it returns the instant the head batch becomes eligible, or the zero time
// when there is nothing to wait for besides a wake-up.
func (b *Batcher[K, V]) take(now time.Time) ([]*Item[K, V], time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 || b.inFlight >= b.config.LevelOfParallelism {
		return nil, time.Time{}
	}

	var readyAt time.Time
	gapEnd := b.lastDispatch.Add(b.config.MinimumDelay)
	if len(b.queue) >= b.config.MaxSize {
		readyAt = now
		if b.hasDispatched {
			readyAt = gapEnd
		}
	} else {
		readyAt = b.queue[0].EnqueuedAt.Add(b.config.MinimumDelay)
		if b.hasDispatched && gapEnd.After(readyAt) {
			readyAt = gapEnd
		}
	}
	if readyAt.After(now) {
		return nil, readyAt
	}

	size := min(len(b.queue), b.config.MaxSize)
	batch := make([]*Item[K, V], size)
	copy(batch, b.queue[:size])
	b.queue = b.queue[size:]
	for _, item := range batch {
		delete(b.pending, item.Key)
	}

	b.inFlight++
	b.lastDispatch = now
	b.hasDispatched = true
	return batch, time.Time{}
}

func (b *Batcher[K, V]) dispatch(batch []*Item[K, V]) {
	b.dispatched.Add(1)
	b.batchWG.Add(1)
	logging.Debug("%s: Dispatching batch of %d", b.name, len(batch))

	go func() {
		defer b.batchWG.Done()
		defer func() {
			b.mu.Lock()
			b.inFlight--
			b.mu.Unlock()
			b.wake()
		}()

		err := b.process(batch)
		if err != nil {
			b.failed.Add(1)
			logging.Warn("%s: Batch of %d failed: %v", b.name, len(batch), err)
		}

		for _, item := range batch {
			if err != nil {
				item.Reject(err)
			} else {
				item.Reject(ErrUnresolved)
			}
			if item.future.err == nil {
				b.resolved.Add(1)
			} else {
				b.rejected.Add(1)
			}
		}
	}()
}

// process runs the processor and turns a panic into a batch error.
func (b *Batcher[K, V]) process(batch []*Item[K, V]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch processor panic: %v", r)
		}
	}()
	return b.processor.Process(context.Background(), batch)
}
