package presence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/roblox"
)

type fakeFetcher struct {
	records []roblox.PresenceRecord
	err     error

	mu    sync.Mutex
	calls [][]int64
}

func (f *fakeFetcher) GetUserPresences(ctx context.Context, userIDs []int64) ([]roblox.PresenceRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]int64(nil), userIDs...))
	f.mu.Unlock()
	return f.records, f.err
}

func (f *fakeFetcher) snapshot() [][]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]int64(nil), f.calls...)
}

func TestTypeFromWire(t *testing.T) {
	tests := []struct {
		wire     int
		expected PresenceType
	}{
		{0, Offline},
		{1, Online},
		{2, Experience},
		{3, Studio},
		{4, Offline},
		{-1, Offline},
	}

	for _, tt := range tests {
		if got := typeFromWire(tt.wire); got != tt.expected {
			t.Errorf("typeFromWire(%d) = %s, want %s", tt.wire, got, tt.expected)
		}
	}
}

func TestFromRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   roblox.PresenceRecord
		expected UserPresence
	}{
		{
			name:     "experience with place",
			record:   roblox.PresenceRecord{UserPresenceType: 2, PlaceID: 42, LastLocation: "Obby"},
			expected: UserPresence{Type: Experience, Location: &Location{ID: 42, Name: "Obby"}},
		},
		{
			name:     "experience with hidden place",
			record:   roblox.PresenceRecord{UserPresenceType: 2, LastLocation: "Obby"},
			expected: UserPresence{Type: Experience},
		},
		{
			name:     "studio prefix stripped",
			record:   roblox.PresenceRecord{UserPresenceType: 3, PlaceID: 7, LastLocation: "Studio - My Place"},
			expected: UserPresence{Type: Studio, Location: &Location{ID: 7, Name: "My Place"}},
		},
		{
			name:     "studio prefix with extra spaces",
			record:   roblox.PresenceRecord{UserPresenceType: 3, PlaceID: 7, LastLocation: "Studio  -My Place"},
			expected: UserPresence{Type: Studio, Location: &Location{ID: 7, Name: "My Place"}},
		},
		{
			name:     "experience keeps studio-like name",
			record:   roblox.PresenceRecord{UserPresenceType: 2, PlaceID: 7, LastLocation: "Studio - Tycoon"},
			expected: UserPresence{Type: Experience, Location: &Location{ID: 7, Name: "Studio - Tycoon"}},
		},
		{
			name:     "online ignores place",
			record:   roblox.PresenceRecord{UserPresenceType: 1, PlaceID: 42, LastLocation: "Website"},
			expected: UserPresence{Type: Online},
		},
		{
			name:     "empty location name",
			record:   roblox.PresenceRecord{UserPresenceType: 3, PlaceID: 7},
			expected: UserPresence{Type: Studio, Location: &Location{ID: 7, Name: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromRecord(tt.record); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("fromRecord() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestPresenceTypeJSON(t *testing.T) {
	data, err := json.Marshal(UserPresence{Type: Studio, Location: &Location{ID: 1, Name: "x"}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"type":"Studio","location":{"id":1,"name":"x"}}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}

	var decoded UserPresence
	if err := json.Unmarshal([]byte(`{"type":"experience"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Type != Experience {
		t.Errorf("Expected Experience, got %s", decoded.Type)
	}
	if err := json.Unmarshal([]byte(`{"type":"away"}`), &decoded); err == nil {
		t.Error("Expected error for unknown type")
	}
}

func newTestService(t *testing.T, fetcher Fetcher, clock clockwork.Clock) *Service {
	t.Helper()
	svc, err := NewService(fetcher, batching.DefaultConfig(), batching.WithClock(clock))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	svc.Start()
	t.Cleanup(svc.Stop)
	return svc
}

// TestMissingUserResolvesOffline tests the documented example: three users
// queued together, one bulk call after the delay, the absent user Offline
func TestMissingUserResolvesOffline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	fetcher := &fakeFetcher{records: []roblox.PresenceRecord{
		{UserID: 1, UserPresenceType: 1},
		{UserID: 2, UserPresenceType: 2, PlaceID: 9, LastLocation: "Obby"},
	}}
	svc := newTestService(t, fetcher, clock)

	type result struct {
		presences map[int64]UserPresence
		err       error
	}
	done := make(chan result, 1)
	go func() {
		p, err := svc.GetPresences(ctx, []int64{1, 2, 3})
		done <- result{p, err}
	}()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)

	res := <-done
	if res.err != nil {
		t.Fatalf("GetPresences failed: %v", res.err)
	}
	if got := fetcher.snapshot(); !reflect.DeepEqual(got, [][]int64{{1, 2, 3}}) {
		t.Errorf("Expected one call with [1 2 3], got %v", got)
	}
	if res.presences[1].Type != Online {
		t.Errorf("user 1: expected Online, got %s", res.presences[1].Type)
	}
	if res.presences[2].Type != Experience || res.presences[2].Location.ID != 9 {
		t.Errorf("user 2: unexpected %+v", res.presences[2])
	}
	if res.presences[3].Type != Offline || res.presences[3].Location != nil {
		t.Errorf("user 3: expected Offline, got %+v", res.presences[3])
	}
}

// TestFailedCallRejectsBatch tests that a failed bulk call fails every
// lookup in the batch with ErrLookupFailed
func TestFailedCallRejectsBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	fetcher := &fakeFetcher{err: &roblox.StatusError{Method: "POST", StatusCode: 500}}
	svc := newTestService(t, fetcher, clock)

	errs := make(chan error, 2)
	for _, id := range []int64{10, 11} {
		id := id
		go func() {
			_, err := svc.GetPresence(ctx, id)
			errs <- err
		}()
	}

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	// Both lookups must be queued before the timer fires
	waitQueued(t, svc, 2)
	clock.Advance(10 * time.Second)

	for i := 0; i < 2; i++ {
		if err := <-errs; !errors.Is(err, ErrLookupFailed) {
			t.Errorf("Expected ErrLookupFailed, got %v", err)
		}
	}
	if calls := fetcher.snapshot(); len(calls) != 1 {
		t.Errorf("Expected 1 call, got %d", len(calls))
	}
}

func TestInvalidUserID(t *testing.T) {
	svc := newTestService(t, &fakeFetcher{}, clockwork.NewFakeClock())

	if _, err := svc.GetPresence(context.Background(), 0); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("Expected ErrInvalidUserID, got %v", err)
	}
	if _, err := svc.GetPresences(context.Background(), []int64{1, -5}); !errors.Is(err, ErrInvalidUserID) {
		t.Errorf("Expected ErrInvalidUserID, got %v", err)
	}
	if m := svc.Metrics(); m.Queued != 0 {
		t.Errorf("Invalid lookups should not be queued, got %d", m.Queued)
	}
}

// TestServiceWithSiteClient runs a lookup end to end against a fake site
func TestServiceWithSiteClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userPresences":[{"userPresenceType":3,"placeId":5,"lastLocation":"Studio - Lab","userId":77}]}`))
	}))
	defer server.Close()

	cfg := roblox.DefaultConfig()
	cfg.PresenceURL = server.URL
	cfg.RetryCount = 0
	client, err := roblox.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	clock := clockwork.NewFakeClock()
	svc := newTestService(t, client, clock)

	done := make(chan UserPresence, 1)
	go func() {
		p, err := svc.GetPresence(ctx, 77)
		if err != nil {
			t.Errorf("GetPresence failed: %v", err)
		}
		done <- p
	}()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10 * time.Second)

	p := <-done
	if p.Type != Studio || p.Location == nil || p.Location.Name != "Lab" {
		t.Errorf("Unexpected presence %+v", p)
	}
}

func waitQueued(t *testing.T, svc *Service, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if svc.Metrics().Queued >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d queued lookups", n)
}

func TestMaxWait(t *testing.T) {
	cfg := batching.Config{MaxSize: 100, MinimumDelay: 10 * time.Second, LevelOfParallelism: 1}

	tests := []struct {
		name        string
		n           int
		callTimeout time.Duration
		expected    time.Duration
	}{
		{"single lookup", 1, 10 * time.Second, 2*10*time.Second + 10*time.Second},
		{"full bulk lookup", MaxBulkLookup, 10 * time.Second, 11*10*time.Second + 10*time.Second},
		{"slow calls stretch the gap", 100, 15 * time.Second, 2*15*time.Second + 15*time.Second},
		{"zero treated as one", 0, time.Second, 2*10*time.Second + time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxWait(cfg, tt.n, tt.callTimeout); got != tt.expected {
				t.Errorf("MaxWait(%d, %s) = %s, want %s", tt.n, tt.callTimeout, got, tt.expected)
			}
		})
	}
}
