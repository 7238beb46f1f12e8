// Package daemon contains the lifecycle of the rplus daemon.
package daemon

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rplus-dev/rplus/cmd/rplusd/config"
	"github.com/rplus-dev/rplus/internal/api"
	"github.com/rplus-dev/rplus/internal/items"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/navigation"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/roblox"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
	"github.com/rplus-dev/rplus/internal/version"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace is the time API requests get to finish on exit, on top of
// the site timeout that bounds an in-flight presence call
const shutdownGrace = 5 * time.Second

// Run starts the daemon and blocks until SIGINT, SIGTERM or ctx is done.
//
// STARTUP ORDER:
//  1. Site client, then the signed-in user and the settings store in parallel
//  2. API listener, bound before any background work so a taken port fails fast
//  3. Presence coalescer
//  4. Navbar refresh tasks on the scheduler, plus their settings listeners
//  5. HTTP API server
//
// Shutdown drains the API while the presence coalescer stops, then stops
// the scheduler and closes the settings store. Queued presence lookups are
// failed with a stopped error rather than dropped.
func Run(ctx context.Context) error {
	logging.SetLevel(config.Global.LogLevel)
	logging.Info("Starting rplus daemon v%s", version.RplusdVersion)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := roblox.NewClient(buildSiteConfig())
	if err != nil {
		logging.Error("Failed to create site client: %v", err)
		return fmt.Errorf("failed to create site client: %w", err)
	}

	var (
		userID int64
		store  settings.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		userID = resolveUser(gctx, client)
		return nil
	})
	g.Go(func() error {
		var err error
		store, err = openSettingsStore(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.Error("Failed to open settings store: %v", err)
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("Error closing settings store: %v", err)
		}
	}()
	prefs := settings.New(store)

	apiListener, err := bindAPIListener()
	if err != nil {
		return fmt.Errorf("failed to bind API listener: %w", err)
	}

	presenceService, err := presence.NewService(client, config.PresenceBatchConfig())
	if err != nil {
		apiListener.Close()
		return err
	}
	presenceService.Start()
	// Stop is idempotent; the deferred calls only matter on early returns
	defer presenceService.Stop()

	refresher := navigation.NewRefresher(client, prefs, userID)
	sched := scheduler.New()
	if err := refresher.Register(sched); err != nil {
		apiListener.Close()
		return fmt.Errorf("failed to register navigation tasks: %w", err)
	}
	if err := refresher.Listen(ctx); err != nil {
		apiListener.Close()
		return fmt.Errorf("failed to watch navigation settings: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		apiListener.Close()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	sales := items.NewService(client, prefs, userID)

	apiServer, err := api.NewServerWithListener(
		buildAPIConfig(presenceService, refresher, prefs, sales, sched), apiListener)
	if err != nil {
		logging.Error("Failed to create API server: %v", err)
		apiListener.Close()
		return fmt.Errorf("failed to create API server: %w", err)
	}
	if err := apiServer.Start(); err != nil {
		logging.Error("Failed to start API server: %v", err)
		return fmt.Errorf("failed to start API server: %w", err)
	}

	logging.Success("rplus daemon started successfully")
	logging.Info("Daemon running... Press Ctrl+C to shutdown")
	logging.Info("  - HTTP API: %s", apiServer.Addr())
	logging.Info("  - Presence batches: %d users, %s apart, %d in flight",
		config.Global.PresenceMaxSize, config.Global.PresenceMinimumDelay, config.Global.PresenceParallelism)
	if userID != 0 {
		logging.Info("  - Navbar counters: user %d", userID)
	}

	<-ctx.Done()
	logging.Info("Initiating graceful shutdown...")

	if err := stopServing(apiServer, presenceService, config.Global.SiteTimeout+shutdownGrace); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}
	sched.Stop()

	logging.Success("rplus daemon shutdown completed")
	return nil
}

// stopServing shuts the API server down while the presence coalescer stops.
// Handlers waiting on a queued lookup then answer 503 instead of holding
// their connection until the shutdown deadline.
func stopServing(apiServer *api.Server, presenceService *presence.Service, timeout time.Duration) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		presenceService.Stop()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := apiServer.Shutdown(ctx)

	<-stopped
	return err
}
