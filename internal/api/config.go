// Package api provides the HTTP API server of rplusd.
//
// This file defines the server configuration. Config doubles as the
// dependency container of the server: every service a route needs is handed
// in here, typed by the small interfaces of the handlers package, so tests
// can substitute fakes for the site-backed services.
package api

import (
	"fmt"
	"time"

	"github.com/rplus-dev/rplus/internal/api/handlers"
	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/config"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/settings"
	"github.com/rplus-dev/rplus/internal/validate"
	"github.com/rplus-dev/rplus/internal/version"
)

// Config holds everything the HTTP API server needs.
type Config struct {
	BindAddr string // HTTP server bind address (e.g., "127.0.0.1")
	BindPort int    // HTTP server bind port
	Version  string // Reported by health and about

	// Presence lookups wait for their batches. PresenceTimeout bounds that
	// wait so the handler can still answer 504; zero leaves it unbounded.
	// WriteTimeout must outlast it and is derived from it when zero.
	PresenceTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration

	Presence   handlers.PresenceService
	Navigation handlers.NavigationService
	Settings   *settings.Settings
	Sales      handlers.SalesService
	Tasks      handlers.TaskSource
}

// DefaultConfig returns a loopback configuration. Services must be set by the
// caller.
func DefaultConfig() *Config {
	return &Config{
		BindAddr: config.DefaultBindAddr,
		BindPort: config.DefaultAPIPort,
		Version:  version.RplusdVersion,

		PresenceTimeout: presence.MaxWait(*batching.DefaultConfig(), presence.MaxBulkLookup, config.DefaultSiteTimeout),
		ReadTimeout:     15 * time.Second,
		IdleTimeout:     60 * time.Second,
	}
}

// EffectiveWriteTimeout returns WriteTimeout, or PresenceTimeout plus the
// response slack when WriteTimeout is zero. Zero means no limit.
func (c *Config) EffectiveWriteTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	if c.PresenceTimeout > 0 {
		return c.PresenceTimeout + config.ResponseSlack
	}
	return 0
}

// Validate checks the network settings and that every service is wired.
func (c *Config) Validate() error {
	if err := validate.ValidateRequiredString(c.BindAddr, "bind address"); err != nil {
		return err
	}
	if err := validate.ValidatePortRange(c.BindPort); err != nil {
		return fmt.Errorf("bind port validation failed: %w", err)
	}
	if c.PresenceTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	if c.WriteTimeout > 0 && (c.PresenceTimeout == 0 || c.WriteTimeout <= c.PresenceTimeout) {
		return fmt.Errorf("write timeout %s must exceed the presence timeout %s", c.WriteTimeout, c.PresenceTimeout)
	}
	if c.Presence == nil {
		return fmt.Errorf("presence service cannot be nil")
	}
	if c.Navigation == nil {
		return fmt.Errorf("navigation service cannot be nil")
	}
	if c.Settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if c.Sales == nil {
		return fmt.Errorf("sales service cannot be nil")
	}
	if c.Tasks == nil {
		return fmt.Errorf("task source cannot be nil")
	}

	return nil
}
