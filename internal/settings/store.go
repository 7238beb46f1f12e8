package settings

import (
	"context"
	"sync"

	"github.com/rplus-dev/rplus/internal/logging"
)

// Change is a single setting update delivered to watchers.
type Change struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Store persists raw setting values. Values are JSON scalars (bool, float64,
// string) or nil.
type Store interface {
	// Get returns the stored value of key. found is false when unset.
	Get(ctx context.Context, key string) (value any, found bool, err error)

	// Set stores value and notifies watchers.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key and notifies watchers with a nil value. Deleting
	// an unset key is not an error.
	Delete(ctx context.Context, key string) error

	// All returns every stored value.
	All(ctx context.Context) (map[string]any, error)

	// Watch delivers changes until ctx is done, then closes the channel.
	Watch(ctx context.Context) (<-chan Change, error)

	// Close releases the store's resources.
	Close() error
}

// watchBuffer is the number of undelivered changes a slow watcher may lag
// behind before further changes are dropped for it.
const watchBuffer = 16

// broadcaster fans changes out to in-process watchers.
type broadcaster struct {
	mu   sync.Mutex
	subs map[chan Change]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan Change]struct{})}
}

func (b *broadcaster) subscribe(ctx context.Context) <-chan Change {
	ch := make(chan Change, watchBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

func (b *broadcaster) publish(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- change:
		default:
			logging.Warn("Settings: Dropped change of %s for a slow watcher", change.Key)
		}
	}
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
	events *broadcaster
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]any),
		events: newBroadcaster(),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	s.events.publish(Change{Key: key, Value: value})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()

	s.events.publish(Change{Key: key})
	return nil
}

func (s *MemoryStore) All(_ context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Watch(ctx context.Context) (<-chan Change, error) {
	return s.events.subscribe(ctx), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
