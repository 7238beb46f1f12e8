package navigation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
	"golang.org/x/sync/singleflight"
)

const (
	// LiveInterval is the period of the live balance loop
	LiveInterval = 250 * time.Millisecond

	// CounterInterval is the period of the counter refresh loop
	CounterInterval = 500 * time.Millisecond
)

// ErrNoUser is returned by network refreshes when no signed-in user is known.
var ErrNoUser = errors.New("no authenticated user")

// Source fetches the counter values from the site.
type Source interface {
	GetRobuxBalance(ctx context.Context, userID int64) (int64, error)
	GetFriendRequestCount(ctx context.Context) (int64, error)
}

// Refresher keeps a Counter current. UserID zero means nobody is signed in;
// the counters are then only re-rendered, never fetched.
type Refresher struct {
	source   Source
	settings *settings.Settings
	counter  *Counter
	userID   int64

	balances singleflight.Group
}

// NewRefresher wires source and settings to a fresh Counter.
func NewRefresher(source Source, prefs *settings.Settings, userID int64) *Refresher {
	return &Refresher{
		source:   source,
		settings: prefs,
		counter:  NewCounter(),
		userID:   userID,
	}
}

// Counter returns the counter being refreshed.
func (r *Refresher) Counter() *Counter {
	return r.counter
}

// Register adds the live and counter loops to s.
func (r *Refresher) Register(s *scheduler.Scheduler) error {
	if err := s.Every("navigation-live", LiveInterval, r.tickLive); err != nil {
		return err
	}
	return s.Every("navigation-counters", CounterInterval, r.tickCounters)
}

// Listen re-renders on abbreviation changes and follows show-devex-rate,
// until ctx is done.
func (r *Refresher) Listen(ctx context.Context) error {
	err := r.settings.ListenForChanges(ctx, settings.KeyCounterAbbreviation, func(any) {
		if count, ok := r.counter.Robux(); ok {
			r.render(ctx, count)
		}
	})
	if err != nil {
		return err
	}

	return r.settings.ListenForChanges(ctx, settings.KeyShowDevexRate, func(value any) {
		enabled, _ := value.(bool)
		r.counter.SetDevexVisible(enabled)
	})
}

// RefreshRobux fetches the balance and renders it. Concurrent calls share
// one request.
func (r *Refresher) RefreshRobux(ctx context.Context) (int64, error) {
	if r.userID == 0 {
		return 0, ErrNoUser
	}

	v, err, shared := r.balances.Do("robux", func() (any, error) {
		return r.source.GetRobuxBalance(ctx, r.userID)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update Robux balance: %w", err)
	}
	if shared {
		logging.Debug("Navigation: Shared in-flight balance request")
	}

	count := v.(int64)
	r.render(ctx, count)
	return count, nil
}

// RefreshFriendRequests fetches and stores the friend-request count.
func (r *Refresher) RefreshFriendRequests(ctx context.Context) (int64, error) {
	if r.userID == 0 {
		return 0, ErrNoUser
	}

	count, err := r.source.GetFriendRequestCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to update friend requests: %w", err)
	}
	r.counter.SetFriendRequests(count)
	return count, nil
}

func (r *Refresher) render(ctx context.Context, count int64) {
	threshold := r.settings.Number(ctx, settings.KeyCounterAbbreviation, DefaultAbbreviationThreshold)
	withDevex := r.settings.Bool(ctx, settings.KeyShowDevexRate, false)
	r.counter.Render(count, threshold, withDevex)
}

func (r *Refresher) tickLive(ctx context.Context) error {
	var err error
	if r.userID != 0 && r.settings.Bool(ctx, settings.KeyRobuxLive, false) {
		_, err = r.RefreshRobux(ctx)
	}

	if r.settings.Bool(ctx, settings.KeyShowDevexRate, false) {
		state := r.counter.State()
		if state.Loaded && state.DevexText == "" {
			r.render(ctx, state.Robux)
		}
	}
	return err
}

func (r *Refresher) tickCounters(ctx context.Context) error {
	refresh := r.userID != 0 && r.settings.Toggle(ctx, settings.KeyNavCounter)
	if !refresh {
		if count, ok := r.counter.Robux(); ok {
			r.render(ctx, count)
		}
		return nil
	}

	_, robuxErr := r.RefreshRobux(ctx)
	_, friendsErr := r.RefreshFriendRequests(ctx)
	return errors.Join(robuxErr, friendsErr)
}
