package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/rplus-dev/rplus/internal/batching"
	"golang.org/x/sync/errgroup"
)

// MaxBulkLookup is the largest number of users a single bulk lookup may ask
// for.
const MaxBulkLookup = 1000

// MaxWait bounds how long a lookup of n users can take on a coalescer with
// one full batch already queued ahead of it. Each batch leaves no sooner than
// MinimumDelay after the previous one and no sooner than the previous call
// returns, which callTimeout bounds.
func MaxWait(cfg batching.Config, n int, callTimeout time.Duration) time.Duration {
	size := max(cfg.MaxSize, 1)
	batches := (max(n, 1)+size-1)/size + 1
	gap := max(cfg.MinimumDelay, callTimeout)
	return time.Duration(batches)*gap + callTimeout
}

// Service answers presence lookups through a batch coalescer.
type Service struct {
	batcher *batching.Batcher[int64, UserPresence]
}

// NewService builds the coalescer around fetcher. A nil config selects
// batching.DefaultConfig.
func NewService(fetcher Fetcher, config *batching.Config, opts ...batching.Option) (*Service, error) {
	opts = append([]batching.Option{batching.WithName("Presence")}, opts...)
	batcher, err := batching.NewBatcher[int64, UserPresence](NewProcessor(fetcher), config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create presence batcher: %w", err)
	}
	return &Service{batcher: batcher}, nil
}

// Start begins dispatching queued lookups.
func (s *Service) Start() {
	s.batcher.Start()
}

// Stop waits for the in-flight call and fails whatever is still queued.
func (s *Service) Stop() {
	s.batcher.Stop()
}

// GetPresence returns the presence of userID. It blocks until the batch
// containing the lookup completes or ctx is done.
func (s *Service) GetPresence(ctx context.Context, userID int64) (UserPresence, error) {
	if userID <= 0 {
		return UserPresence{}, fmt.Errorf("%w: %d", ErrInvalidUserID, userID)
	}
	return s.batcher.Submit(userID).Wait(ctx)
}

// GetPresences looks up several users at once. All IDs are queued together
// so they share a batch whenever MaxSize allows. The first failure cancels
// the wait and is returned.
func (s *Service) GetPresences(ctx context.Context, userIDs []int64) (map[int64]UserPresence, error) {
	for _, id := range userIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidUserID, id)
		}
	}

	futures := s.batcher.SubmitMany(userIDs...)
	results := make([]UserPresence, len(futures))

	g, gctx := errgroup.WithContext(ctx)
	for i, future := range futures {
		i, future := i, future
		g.Go(func() error {
			presence, err := future.Wait(gctx)
			if err != nil {
				return fmt.Errorf("user %d: %w", userIDs[i], err)
			}
			results[i] = presence
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	presences := make(map[int64]UserPresence, len(userIDs))
	for i, id := range userIDs {
		presences[id] = results[i]
	}
	return presences, nil
}

// Metrics exposes the coalescer counters.
func (s *Service) Metrics() batching.Metrics {
	return s.batcher.Metrics()
}

// Config returns the coalescer configuration.
func (s *Service) Config() batching.Config {
	return s.batcher.Config()
}
