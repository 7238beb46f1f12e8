package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rplus-dev/rplus/cmd/rplusd/config"
	"github.com/rplus-dev/rplus/internal/api"
	"github.com/rplus-dev/rplus/internal/items"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/navigation"
	"github.com/rplus-dev/rplus/internal/netutil"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/roblox"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
	"github.com/rplus-dev/rplus/internal/version"
)

// redisDialTimeout bounds the initial connection to a Redis settings store
const redisDialTimeout = 5 * time.Second

// buildSiteConfig assembles the site client configuration from the daemon config
func buildSiteConfig() *roblox.Config {
	cfg := roblox.DefaultConfig()
	cfg.Timeout = config.Global.SiteTimeout
	cfg.AuthCookie = config.Global.AuthCookie
	cfg.UserAgent = "rplusd/" + version.RplusdVersion
	return cfg
}

// buildAPIConfig hands the running services to the HTTP API
func buildAPIConfig(
	presenceService *presence.Service,
	refresher *navigation.Refresher,
	prefs *settings.Settings,
	sales *items.Service,
	sched *scheduler.Scheduler,
) *api.Config {
	cfg := api.DefaultConfig()
	cfg.BindAddr = config.Global.APIAddr
	cfg.BindPort = config.Global.APIPort
	cfg.Presence = presenceService
	cfg.Navigation = refresher
	cfg.Settings = prefs
	cfg.Sales = sales
	cfg.Tasks = sched
	cfg.PresenceTimeout = presence.MaxWait(*config.PresenceBatchConfig(), presence.MaxBulkLookup, config.Global.SiteTimeout)
	return cfg
}

// openSettingsStore opens the Redis store when an address is configured and
// the YAML file store otherwise.
func openSettingsStore(ctx context.Context) (settings.Store, error) {
	if config.Global.RedisAddr != "" {
		store, err := settings.NewRedisStore(ctx, settings.RedisConfig{
			Addr:     config.Global.RedisAddr,
			Password: config.Global.RedisPassword,
			DB:       config.Global.RedisDB,
			Prefix:   config.Global.RedisPrefix,
			Timeout:  redisDialTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open Redis settings store at %s: %w", config.Global.RedisAddr, err)
		}
		logging.Info("Settings: Using Redis store at %s (db %d)", config.Global.RedisAddr, config.Global.RedisDB)
		return store, nil
	}

	store, err := settings.OpenFileStore(config.Global.SettingsFile)
	if err != nil {
		return nil, err
	}
	logging.Info("Settings: Using file store at %s", store.Path())
	return store, nil
}

// resolveUser returns the ID of the signed-in user. Anonymous sessions and
// rejected cookies resolve to 0, which disables the per-user features.
func resolveUser(ctx context.Context, client *roblox.Client) int64 {
	if !client.Authenticated() {
		logging.Info("Running anonymously")
		return 0
	}

	user, err := client.GetAuthenticatedUser(ctx)
	if err != nil {
		if errors.Is(err, roblox.ErrNotAuthenticated) {
			logging.Warn("Session cookie was rejected, continuing anonymously")
		} else {
			logging.Warn("Failed to resolve the signed-in user, continuing anonymously: %v", err)
		}
		return 0
	}

	logging.Info("Signed in as %s (%d)", user.Name, user.ID)
	return user.ID
}

// bindAPIListener reserves the API port. An explicit --api port must be free;
// the default port falls back to the next free one.
func bindAPIListener() (net.Listener, error) {
	addr, port := config.Global.APIAddr, config.Global.APIPort

	if config.Global.IsExplicitlySet(config.APIAddrField) {
		listener, err := netutil.Listen(addr, port)
		if err != nil {
			if netutil.IsAddressInUseError(err) {
				logging.Error("Port %d is already in use - cannot start API on %s", port, addr)
			}
			return nil, err
		}
		return listener, nil
	}

	listener, bound, err := netutil.ListenWithFallback(addr, port, config.Global.MaxPorts)
	if err != nil {
		return nil, err
	}
	if bound == 0 {
		if bound, err = netutil.ListenerPort(listener); err != nil {
			listener.Close()
			return nil, err
		}
	}
	if bound != port && port != 0 {
		logging.Warn("API port %d is in use, using %d instead (pass --api=%s:%d to rplusctl)", port, bound, addr, bound)
	}
	config.Global.APIPort = bound
	return listener, nil
}
