package batching

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// recorder is a processor that remembers every batch it received and the
// fake-clock instant it was called at.
type recorder struct {
	clock   clockwork.Clock
	resolve bool
	err     error
	gate    chan struct{}

	mu    sync.Mutex
	calls [][]int64
	times []time.Time
}

func (r *recorder) Process(ctx context.Context, items []*Item[int64, string]) error {
	keys := make([]int64, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}

	r.mu.Lock()
	r.calls = append(r.calls, keys)
	r.times = append(r.times, r.clock.Now())
	r.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	if r.resolve {
		for _, item := range items {
			item.Resolve("user")
		}
	}
	return r.err
}

func (r *recorder) snapshot() ([][]int64, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]int64(nil), r.calls...), append([]time.Time(nil), r.times...)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestBatcher(t *testing.T, p Processor[int64, string], cfg *Config, clock clockwork.Clock) *Batcher[int64, string] {
	t.Helper()
	b, err := NewBatcher(p, cfg, WithClock(clock), WithName("test"))
	if err != nil {
		t.Fatalf("NewBatcher failed: %v", err)
	}
	t.Cleanup(b.Stop)
	return b
}

func waitAll(t *testing.T, ctx context.Context, futures []*Future[string]) []error {
	t.Helper()
	errs := make([]error, len(futures))
	for i, f := range futures {
		_, errs[i] = f.Wait(ctx)
		if errors.Is(errs[i], context.DeadlineExceeded) {
			t.Fatalf("future %d never completed", i)
		}
	}
	return errs
}

// TestSingleBatchAfterMinimumDelay tests that a partial batch waits for the
// full delay and is sent as one call
func TestSingleBatchAfterMinimumDelay(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	start := clock.Now()
	rec := &recorder{clock: clock, resolve: true}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 100, MinimumDelay: 10 * time.Second}, clock)

	futures := b.SubmitMany(1, 2, 3)
	b.Start()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("dispatcher never armed its timer: %v", err)
	}
	clock.Advance(9 * time.Second)
	if calls, _ := rec.snapshot(); len(calls) != 0 {
		t.Fatalf("Expected no dispatch before delay, got %d", len(calls))
	}

	clock.Advance(time.Second)
	for i, err := range waitAll(t, ctx, futures) {
		if err != nil {
			t.Errorf("future %d failed: %v", i, err)
		}
	}

	calls, times := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 dispatch, got %d", len(calls))
	}
	if !reflect.DeepEqual(calls[0], []int64{1, 2, 3}) {
		t.Errorf("Expected keys [1 2 3], got %v", calls[0])
	}
	if got := times[0].Sub(start); got != 10*time.Second {
		t.Errorf("Expected dispatch at 10s, got %s", got)
	}
}

// TestOversizedSubmissionSplits tests that more keys than MaxSize are sent in
// ceil(N/MaxSize) calls spaced by the minimum delay
func TestOversizedSubmissionSplits(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	start := clock.Now()
	rec := &recorder{clock: clock, resolve: true}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 2, MinimumDelay: 10 * time.Second}, clock)

	futures := b.SubmitMany(1, 2, 3, 4, 5)
	b.Start()

	// First batch is full and nothing was sent before, so it leaves at once.
	if _, err := futures[0].Wait(ctx); err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("dispatcher never armed its timer: %v", err)
		}
		clock.Advance(10 * time.Second)
	}

	for i, err := range waitAll(t, ctx, futures) {
		if err != nil {
			t.Errorf("future %d failed: %v", i, err)
		}
	}

	calls, times := rec.snapshot()
	want := [][]int64{{1, 2}, {3, 4}, {5}}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("Expected batches %v, got %v", want, calls)
	}
	wantOffsets := []time.Duration{0, 10 * time.Second, 20 * time.Second}
	for i, ts := range times {
		if got := ts.Sub(start); got != wantOffsets[i] {
			t.Errorf("batch %d: expected offset %s, got %s", i, wantOffsets[i], got)
		}
	}
}

// TestNoOverlapWhileInFlight tests that a full batch waits for the previous
// call to finish when parallelism is 1
func TestNoOverlapWhileInFlight(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	gate := make(chan struct{})
	rec := &recorder{clock: clock, resolve: true, gate: gate}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 2, MinimumDelay: 10 * time.Second}, clock)
	b.Start()

	first := b.SubmitMany(1, 2)
	waitForCalls(t, rec, 1)

	second := b.SubmitMany(3, 4)
	clock.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)

	if calls, _ := rec.snapshot(); len(calls) != 1 {
		t.Fatalf("Expected 1 call while first batch in flight, got %d", len(calls))
	}
	if m := b.Metrics(); m.InFlight != 1 || m.Queued != 2 {
		t.Errorf("Expected 1 in flight and 2 queued, got %+v", m)
	}

	close(gate)
	waitAll(t, ctx, first)
	waitAll(t, ctx, second)

	calls, _ := rec.snapshot()
	if len(calls) != 2 {
		t.Fatalf("Expected 2 calls after release, got %d", len(calls))
	}
}

// TestQuiescentBatchRespectsPreviousDispatch tests that a late request waits
// for both its own delay and the gap since the last call
func TestQuiescentBatchRespectsPreviousDispatch(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	start := clock.Now()
	rec := &recorder{clock: clock, resolve: true}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 100, MinimumDelay: 10 * time.Second}, clock)
	b.Start()

	first := b.Submit(1)
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)
	if _, err := first.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	clock.Advance(5 * time.Second)
	second := b.Submit(2)
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(9 * time.Second)
	if calls, _ := rec.snapshot(); len(calls) != 1 {
		t.Fatalf("Expected second batch to still wait, got %d calls", len(calls))
	}
	clock.Advance(time.Second)
	if _, err := second.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	_, times := rec.snapshot()
	if got := times[1].Sub(start); got != 25*time.Second {
		t.Errorf("Expected second dispatch at 25s, got %s", got)
	}
}

// TestProcessorErrorRejectsUnresolved tests that a failing call rejects every
// item it did not already settle
func TestProcessorErrorRejectsUnresolved(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	boom := errors.New("boom")
	p := ProcessorFunc[int64, string](func(ctx context.Context, items []*Item[int64, string]) error {
		items[0].Resolve("early")
		return boom
	})
	b := newTestBatcher(t, p, &Config{LevelOfParallelism: 1, MaxSize: 3, MinimumDelay: time.Second}, clock)

	futures := b.SubmitMany(1, 2, 3)
	b.Start()

	v, err := futures[0].Wait(ctx)
	if err != nil || v != "early" {
		t.Errorf("Expected early resolution to stick, got %q, %v", v, err)
	}
	for i, err := range waitAll(t, ctx, futures[1:]) {
		if !errors.Is(err, boom) {
			t.Errorf("future %d: expected boom, got %v", i+1, err)
		}
	}

	b.Stop()
	m := b.Metrics()
	if m.FailedBatches != 1 || m.ResolvedItems != 1 || m.RejectedItems != 2 {
		t.Errorf("Unexpected metrics: %+v", m)
	}
}

// TestUnresolvedItemsAreRejected tests that items a processor forgets fail
// instead of hanging forever
func TestUnresolvedItemsAreRejected(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	p := ProcessorFunc[int64, string](func(ctx context.Context, items []*Item[int64, string]) error {
		return nil
	})
	b := newTestBatcher(t, p, &Config{LevelOfParallelism: 1, MaxSize: 1, MinimumDelay: time.Second}, clock)

	f := b.Submit(7)
	b.Start()

	if _, err := f.Wait(ctx); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Expected ErrUnresolved, got %v", err)
	}
}

// TestProcessorPanicRejectsBatch tests that a panicking processor fails its
// batch without killing the batcher
func TestProcessorPanicRejectsBatch(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	p := ProcessorFunc[int64, string](func(ctx context.Context, items []*Item[int64, string]) error {
		panic("bad response")
	})
	b := newTestBatcher(t, p, &Config{LevelOfParallelism: 1, MaxSize: 1, MinimumDelay: time.Second}, clock)

	f := b.Submit(7)
	b.Start()

	if _, err := f.Wait(ctx); err == nil {
		t.Error("Expected error from panicking processor")
	}
}

// TestStopRejectsQueued tests that queued and late requests fail with
// ErrStopped
func TestStopRejectsQueued(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	rec := &recorder{clock: clock, resolve: true}
	b := newTestBatcher(t, rec, DefaultConfig(), clock)
	b.Start()

	queued := b.SubmitMany(1, 2)
	b.Stop()

	for i, err := range waitAll(t, ctx, queued) {
		if !errors.Is(err, ErrStopped) {
			t.Errorf("future %d: expected ErrStopped, got %v", i, err)
		}
	}
	if _, err := b.Submit(3).Wait(ctx); !errors.Is(err, ErrStopped) {
		t.Errorf("Expected ErrStopped after stop, got %v", err)
	}
	if calls, _ := rec.snapshot(); len(calls) != 0 {
		t.Errorf("Expected no dispatch, got %d", len(calls))
	}

	// Second stop is a no-op
	b.Stop()
}

// TestStopFailsQueuedWhileInFlight tests that queued requests fail as soon
// as Stop is called, without waiting for the call in flight
func TestStopFailsQueuedWhileInFlight(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	gate := make(chan struct{})
	rec := &recorder{clock: clock, resolve: true, gate: gate}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 1, MinimumDelay: 10 * time.Second}, clock)

	futures := b.SubmitMany(1, 2)
	b.Start()
	waitForCalls(t, rec, 1)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		b.Stop()
	}()

	if _, err := futures[1].Wait(ctx); !errors.Is(err, ErrStopped) {
		t.Fatalf("Expected queued request to fail with ErrStopped, got %v", err)
	}
	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight call finished")
	default:
	}

	close(gate)
	<-stopped
	if v, err := futures[0].Wait(ctx); err != nil || v != "user" {
		t.Errorf("Expected in-flight request to resolve, got %q, %v", v, err)
	}
}

// TestExactlyFullBatchLeavesAtOnce pins the boundary of the full rule: a
// batch of exactly MaxSize is full and does not wait for MinimumDelay when
// nothing was dispatched before, while one key less waits the full delay
func TestExactlyFullBatchLeavesAtOnce(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	start := clock.Now()
	rec := &recorder{clock: clock, resolve: true}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 3, MinimumDelay: 10 * time.Second}, clock)

	full := b.SubmitMany(1, 2, 3)
	b.Start()
	for i, err := range waitAll(t, ctx, full) {
		if err != nil {
			t.Errorf("future %d failed: %v", i, err)
		}
	}

	partial := b.SubmitMany(4, 5)
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("dispatcher never armed its timer: %v", err)
	}
	clock.Advance(10 * time.Second)
	waitAll(t, ctx, partial)

	calls, times := rec.snapshot()
	if !reflect.DeepEqual(calls, [][]int64{{1, 2, 3}, {4, 5}}) {
		t.Fatalf("Unexpected batches %v", calls)
	}
	if got := times[0].Sub(start); got != 0 {
		t.Errorf("Expected full batch at 0s, got %s", got)
	}
	if got := times[1].Sub(start); got != 10*time.Second {
		t.Errorf("Expected partial batch at 10s, got %s", got)
	}
}

// TestDuplicateKeysShareRequest tests that a key queued twice is sent once
func TestDuplicateKeysShareRequest(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	rec := &recorder{clock: clock, resolve: true}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 1, MaxSize: 100, MinimumDelay: time.Second}, clock)

	a := b.Submit(5)
	futures := b.SubmitMany(5, 6, 5)
	if a != futures[0] || a != futures[2] {
		t.Error("Expected repeated key to share one future")
	}
	if m := b.Metrics(); m.Queued != 2 {
		t.Errorf("Expected 2 queued, got %d", m.Queued)
	}

	b.Start()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)
	waitAll(t, ctx, futures)

	calls, _ := rec.snapshot()
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], []int64{5, 6}) {
		t.Errorf("Expected one call with [5 6], got %v", calls)
	}
}

// TestParallelDispatch tests that a higher parallelism lets batches overlap
func TestParallelDispatch(t *testing.T) {
	ctx := testContext(t)
	clock := clockwork.NewFakeClock()
	gate := make(chan struct{})
	rec := &recorder{clock: clock, resolve: true, gate: gate}
	b := newTestBatcher(t, rec, &Config{LevelOfParallelism: 2, MaxSize: 1, MinimumDelay: 0}, clock)

	futures := b.SubmitMany(1, 2, 3)
	b.Start()

	waitForCalls(t, rec, 2)
	time.Sleep(50 * time.Millisecond)
	if calls, _ := rec.snapshot(); len(calls) != 2 {
		t.Fatalf("Expected exactly 2 overlapping calls, got %d", len(calls))
	}

	close(gate)
	waitAll(t, ctx, futures)
	if calls, _ := rec.snapshot(); len(calls) != 3 {
		t.Errorf("Expected 3 calls, got %d", len(calls))
	}
}

func TestNewBatcherRejectsInvalidConfig(t *testing.T) {
	rec := &recorder{clock: clockwork.NewFakeClock()}
	tests := []struct {
		name   string
		config *Config
	}{
		{"zero parallelism", &Config{LevelOfParallelism: 0, MaxSize: 1, MinimumDelay: time.Second}},
		{"zero max size", &Config{LevelOfParallelism: 1, MaxSize: 0, MinimumDelay: time.Second}},
		{"negative delay", &Config{LevelOfParallelism: 1, MaxSize: 1, MinimumDelay: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBatcher[int64, string](rec, tt.config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := NewBatcher[int64, string](nil, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil processor, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LevelOfParallelism != 1 || cfg.MaxSize != 100 || cfg.MinimumDelay != 10*time.Second {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func waitForCalls(t *testing.T, rec *recorder, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if calls, _ := rec.snapshot(); len(calls) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d calls", n)
}
