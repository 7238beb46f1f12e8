package navigation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
)

type fakeSource struct {
	robux        atomic.Int64
	friends      atomic.Int64
	robuxCalls   atomic.Int32
	friendsCalls atomic.Int32
	gate         chan struct{} // when set, balance calls block until closed
	err          error
}

func (f *fakeSource) GetRobuxBalance(ctx context.Context, userID int64) (int64, error) {
	f.robuxCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.robux.Load(), nil
}

func (f *fakeSource) GetFriendRequestCount(ctx context.Context) (int64, error) {
	f.friendsCalls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.friends.Load(), nil
}

type brokenStore struct{ *settings.MemoryStore }

func (*brokenStore) Get(context.Context, string) (any, bool, error) {
	return nil, false, errors.New("store offline")
}

func newTestRefresher(t *testing.T, userID int64) (*Refresher, *fakeSource, *settings.Settings) {
	t.Helper()
	source := &fakeSource{}
	prefs := settings.New(settings.NewMemoryStore())
	return NewRefresher(source, prefs, userID), source, prefs
}

func TestTickCountersFetchesWhenEnabled(t *testing.T) {
	r, source, _ := newTestRefresher(t, 7)
	source.robux.Store(12_345)
	source.friends.Store(3)

	if err := r.tickCounters(context.Background()); err != nil {
		t.Fatalf("tickCounters failed: %v", err)
	}

	state := r.Counter().State()
	if state.RobuxText != "12K+" || state.BalanceText != "12,345 Robux" || state.FriendRequests != 3 {
		t.Errorf("Unexpected state: %+v", state)
	}
	if state.DevexText != "" {
		t.Errorf("DevEx text should be empty while disabled, got %q", state.DevexText)
	}
}

func TestTickCountersRerendersWhenDisabled(t *testing.T) {
	r, source, prefs := newTestRefresher(t, 7)
	ctx := context.Background()
	source.robux.Store(5_000)

	if _, err := r.RefreshRobux(ctx); err != nil {
		t.Fatal(err)
	}
	if err := prefs.Set(ctx, settings.KeyNavCounter, false); err != nil {
		t.Fatal(err)
	}
	if err := prefs.Set(ctx, settings.KeyCounterAbbreviation, 10_000); err != nil {
		t.Fatal(err)
	}
	calls := source.robuxCalls.Load()

	if err := r.tickCounters(ctx); err != nil {
		t.Fatalf("tickCounters failed: %v", err)
	}
	if source.robuxCalls.Load() != calls || source.friendsCalls.Load() != 0 {
		t.Error("Disabled counters should not hit the network")
	}
	if got := r.Counter().State().RobuxText; got != "5,000" {
		t.Errorf("Expected re-render with new threshold, got %q", got)
	}
}

func TestUnreadableToggleDisablesRefresh(t *testing.T) {
	source := &fakeSource{}
	r := NewRefresher(source, settings.New(&brokenStore{settings.NewMemoryStore()}), 7)

	if err := r.tickCounters(context.Background()); err != nil {
		t.Fatalf("tickCounters failed: %v", err)
	}
	if source.robuxCalls.Load() != 0 {
		t.Error("Expected no fetch when the toggle cannot be read")
	}
}

func TestTickCountersReportsErrors(t *testing.T) {
	r, source, _ := newTestRefresher(t, 7)
	source.err = errors.New("site down")

	err := r.tickCounters(context.Background())
	if !errors.Is(err, source.err) {
		t.Errorf("Expected wrapped site error, got %v", err)
	}
	if r.Counter().State().Loaded {
		t.Error("Counter should stay unloaded after a failed fetch")
	}
}

func TestTickLive(t *testing.T) {
	r, source, prefs := newTestRefresher(t, 7)
	ctx := context.Background()
	source.robux.Store(1234)

	if err := r.tickLive(ctx); err != nil {
		t.Fatal(err)
	}
	if source.robuxCalls.Load() != 0 {
		t.Error("Live refresh should be off by default")
	}

	_ = prefs.Set(ctx, settings.KeyRobuxLive, true)
	if err := r.tickLive(ctx); err != nil {
		t.Fatal(err)
	}
	if source.robuxCalls.Load() != 1 {
		t.Errorf("Expected 1 balance fetch, got %d", source.robuxCalls.Load())
	}

	// DevEx text appears from the known balance without another fetch
	_ = prefs.Set(ctx, settings.KeyRobuxLive, false)
	_ = prefs.Set(ctx, settings.KeyShowDevexRate, true)
	if err := r.tickLive(ctx); err != nil {
		t.Fatal(err)
	}
	if got := r.Counter().State().DevexText; got != "$4.32 USD" {
		t.Errorf("Expected DevEx text, got %q", got)
	}
	if source.robuxCalls.Load() != 1 {
		t.Error("DevEx render should not refetch")
	}
}

func TestAnonymousUserNeverFetches(t *testing.T) {
	r, source, prefs := newTestRefresher(t, 0)
	ctx := context.Background()
	_ = prefs.Set(ctx, settings.KeyRobuxLive, true)

	_ = r.tickLive(ctx)
	_ = r.tickCounters(ctx)
	if source.robuxCalls.Load() != 0 || source.friendsCalls.Load() != 0 {
		t.Error("Expected no network calls without a user")
	}
	if _, err := r.RefreshRobux(ctx); !errors.Is(err, ErrNoUser) {
		t.Errorf("Expected ErrNoUser, got %v", err)
	}
}

func TestConcurrentBalanceRefreshesShareRequest(t *testing.T) {
	r, source, _ := newTestRefresher(t, 7)
	source.robux.Store(42)
	source.gate = make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if count, err := r.RefreshRobux(context.Background()); err != nil || count != 42 {
				t.Errorf("RefreshRobux = %d, %v", count, err)
			}
		}()
	}

	deadline := time.Now().Add(5 * time.Second)
	for source.robuxCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(source.gate)
	wg.Wait()

	if got := source.robuxCalls.Load(); got != 1 {
		t.Errorf("Expected 1 shared balance request, got %d", got)
	}
}

func TestListenFollowsSettings(t *testing.T) {
	r, source, prefs := newTestRefresher(t, 7)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source.robux.Store(50_000)
	if _, err := r.RefreshRobux(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Listen(ctx); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	_ = prefs.Set(ctx, settings.KeyShowDevexRate, true)
	_ = prefs.Set(ctx, settings.KeyCounterAbbreviation, 100_000)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := r.Counter().State()
		if state.DevexVisible && state.RobuxText == "50,000" {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Errorf("Listeners did not apply changes: %+v", r.Counter().State())
}

func TestRegisterRunsOnScheduler(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, source, _ := newTestRefresher(t, 7)
	source.robux.Store(10)
	clock := clockwork.NewFakeClock()
	s := scheduler.New(scheduler.WithClock(clock))

	if err := r.Register(s); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := clock.BlockUntilContext(ctx, 2); err != nil {
		t.Fatal(err)
	}
	clock.Advance(CounterInterval)

	deadline := time.Now().Add(5 * time.Second)
	for source.friendsCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if source.friendsCalls.Load() == 0 {
		t.Fatal("Counter loop did not run")
	}
}
