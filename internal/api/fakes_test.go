package api

import (
	"context"

	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/items"
	"github.com/rplus-dev/rplus/internal/navigation"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
)

type stubPresence struct{}

func (stubPresence) GetPresence(ctx context.Context, userID int64) (presence.UserPresence, error) {
	return presence.UserPresence{Type: presence.Online}, nil
}

func (stubPresence) GetPresences(ctx context.Context, userIDs []int64) (map[int64]presence.UserPresence, error) {
	out := make(map[int64]presence.UserPresence, len(userIDs))
	for _, id := range userIDs {
		out[id] = presence.UserPresence{Type: presence.Online}
	}
	return out, nil
}

func (stubPresence) Metrics() batching.Metrics { return batching.Metrics{} }

func (stubPresence) Config() batching.Config { return *batching.DefaultConfig() }

type stubNavigation struct{ counter *navigation.Counter }

func (n stubNavigation) Counter() *navigation.Counter { return n.counter }

func (stubNavigation) RefreshRobux(context.Context) (int64, error) { return 0, navigation.ErrNoUser }

func (stubNavigation) RefreshFriendRequests(context.Context) (int64, error) {
	return 0, navigation.ErrNoUser
}

type stubSales struct{}

func (stubSales) SalesStat(context.Context, int64) (*items.Stat, error) { return nil, nil }

func testConfig() *Config {
	return &Config{
		BindAddr:   "127.0.0.1",
		BindPort:   8080,
		Version:    "test",
		Presence:   stubPresence{},
		Navigation: stubNavigation{counter: navigation.NewCounter()},
		Settings:   settings.New(settings.NewMemoryStore()),
		Sales:      stubSales{},
		Tasks:      scheduler.New(),
	}
}
