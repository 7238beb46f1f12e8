// Package scheduler runs named periodic tasks on an injectable clock. It
// replaces free-running global timers with an explicit owner that can be
// started, stopped and observed.
//
// EXECUTION MODEL:
//   - Each task runs on its own goroutine and ticker
//   - A task never overlaps itself; ticks that arrive during a slow run are dropped
//   - Panics are recovered and counted as failures
//   - The first run happens one interval after Start
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rplus-dev/rplus/internal/logging"
)

// TaskFunc is the body of a periodic task. A returned error is logged and
// counted; the task keeps running.
type TaskFunc func(ctx context.Context) error

// ErrAlreadyStarted is returned when tasks are registered after Start or
// Start is called twice.
var ErrAlreadyStarted = errors.New("scheduler already started")

// TaskStats is a snapshot of one task's counters.
type TaskStats struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastError string        `json:"last_error,omitempty"`
}

type task struct {
	name     string
	interval time.Duration
	fn       TaskFunc

	runs     atomic.Int64
	failures atomic.Int64

	mu      sync.Mutex
	lastErr string
}

// Scheduler owns a set of periodic tasks.
type Scheduler struct {
	clock clockwork.Clock

	mu      sync.Mutex
	tasks   []*task
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// New returns an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every registers fn to run every interval. Names must be unique and tasks
// must be registered before Start.
func (s *Scheduler) Every(name string, interval time.Duration, fn TaskFunc) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive, got %s", name, interval)
	}
	if fn == nil {
		return fmt.Errorf("task %s: function is nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("task %s: %w", name, ErrAlreadyStarted)
	}
	for _, t := range s.tasks {
		if t.name == name {
			return fmt.Errorf("task %s already registered", name)
		}
	}

	s.tasks = append(s.tasks, &task{name: name, interval: interval, fn: fn})
	return nil
}

// Start launches every registered task. Tasks stop when ctx is done or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}

	logging.Debug("Scheduler: Started %d tasks", len(s.tasks))
	return nil
}

// Stop cancels all tasks and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	logging.Debug("Scheduler: Stopped")
}

// Stats returns a snapshot of every task's counters in registration order.
func (s *Scheduler) Stats() []TaskStats {
	s.mu.Lock()
	tasks := append([]*task(nil), s.tasks...)
	s.mu.Unlock()

	stats := make([]TaskStats, len(tasks))
	for i, t := range tasks {
		t.mu.Lock()
		lastErr := t.lastErr
		t.mu.Unlock()

		stats[i] = TaskStats{
			Name:      t.name,
			Interval:  t.interval,
			Runs:      t.runs.Load(),
			Failures:  t.failures.Load(),
			LastError: lastErr,
		}
	}
	return stats
}

func (s *Scheduler) loop(ctx context.Context, t *task) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.run(ctx, t)
		}
	}
}

// run executes one iteration. A failure is logged at WARN only when it
// differs from the previous one, so a task failing every 250ms does not
// flood the log.
func (s *Scheduler) run(ctx context.Context, t *task) {
	err := safeCall(ctx, t.fn)
	t.runs.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		if t.lastErr != "" {
			logging.Info("Scheduler: Task %s recovered", t.name)
			t.lastErr = ""
		}
		return
	}

	t.failures.Add(1)
	if msg := err.Error(); msg != t.lastErr {
		logging.Warn("Scheduler: Task %s failed: %v", t.name, err)
		t.lastErr = msg
	} else {
		logging.Debug("Scheduler: Task %s failed again: %v", t.name, err)
	}
}

func safeCall(ctx context.Context, fn TaskFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
