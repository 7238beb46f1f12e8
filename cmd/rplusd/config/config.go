// Package config holds the configuration of the rplus daemon.
//
// The daemon is configured by flags, with a few environment variable
// overrides for values that should not appear in a process listing (the
// session cookie and the Redis password).
//
// EXPLICIT OVERRIDE TRACKING:
// The configuration records which values the user set on the command line
// versus which still hold their defaults. This drives behavior such as:
//
//   - API port: an explicit --api port must be free, a default port falls
//     back to the next free one
//   - Log file: logs only leave stdout when --log-file is given
//   - Settings file: only created on disk when no Redis store is configured
package config

import (
	"time"

	configDefaults "github.com/rplus-dev/rplus/internal/config"
)

// ConfigField represents a configuration field that can be explicitly set
type ConfigField int

const (
	// Configuration field identifiers
	APIAddrField ConfigField = iota
	LogFileField
	SettingsFileField
)

const (
	DefaultAPI          = configDefaults.DefaultBindAddr + ":7420" // Default API address
	DefaultLogLevel     = configDefaults.DefaultLogLevel           // Default log level
	DefaultSettingsFile = configDefaults.DefaultSettingsFile       // Default settings file
	DefaultRedisPrefix  = configDefaults.DefaultRedisPrefix        // Default Redis key prefix
	DefaultSiteTimeout  = configDefaults.DefaultSiteTimeout        // Default site request timeout
	DefaultMaxPorts     = 20                                       // Ports tried when the default API port is taken
	DefaultLogMaxSizeMB = 50                                       // Rotate log files at this size
)

// Config holds all daemon configuration values
type Config struct {
	APIAddr  string // HTTP API bind address
	APIPort  int    // HTTP API port (derived from APIAddr)
	LogLevel string // Log level: DEBUG, INFO, WARN, ERROR
	MaxPorts int    // Ports to try when the default API port is in use

	LogFile       string // Rotated log file, stdout when empty
	LogMaxSizeMB  int    // Rotate after this many megabytes
	LogMaxBackups int    // Rotated log files to keep

	SettingsFile  string // YAML settings store, used when RedisAddr is empty
	RedisAddr     string // Redis settings store "host:port"
	RedisPassword string // Redis password, from RPLUS_REDIS_PASSWORD only
	RedisDB       int    // Redis database number
	RedisPrefix   string // Prefix of the Redis keys

	AuthCookie  string        // Session cookie, from RPLUS_AUTH_COOKIE when unset
	SiteTimeout time.Duration // Timeout of a single site request

	PresenceMaxSize      int           // Users per bulk presence call
	PresenceMinimumDelay time.Duration // Minimum gap between bulk presence calls
	PresenceParallelism  int           // Bulk presence calls in flight at once

	// Flags to track if values were explicitly set by user
	apiAddrExplicitlySet      bool
	logFileExplicitlySet      bool
	settingsFileExplicitlySet bool
}

// Global configuration instance
var Global Config

// SetExplicitlySet marks a configuration field as explicitly set by the user.
func (c *Config) SetExplicitlySet(field ConfigField, value bool) {
	switch field {
	case APIAddrField:
		c.apiAddrExplicitlySet = value
	case LogFileField:
		c.logFileExplicitlySet = value
	case SettingsFileField:
		c.settingsFileExplicitlySet = value
	}
}

// IsExplicitlySet returns whether a configuration field was explicitly set by the user.
func (c *Config) IsExplicitlySet(field ConfigField) bool {
	switch field {
	case APIAddrField:
		return c.apiAddrExplicitlySet
	case LogFileField:
		return c.logFileExplicitlySet
	case SettingsFileField:
		return c.settingsFileExplicitlySet
	}
	return false
}
