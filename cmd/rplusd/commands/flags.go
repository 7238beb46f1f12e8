package commands

import (
	"github.com/rplus-dev/rplus/cmd/rplusd/config"
	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/spf13/cobra"
)

// SetupFlags configures all command line flags for the daemon
func SetupFlags(cmd *cobra.Command) {
	// API flags
	cmd.Flags().StringVar(&config.Global.APIAddr, "api", config.DefaultAPI,
		"Address and port for HTTP API server (e.g., "+config.DefaultAPI+")\n"+
			"When not specified, the next free port is used if the default is taken")

	// Settings store flags
	cmd.Flags().StringVar(&config.Global.SettingsFile, "settings-file", config.DefaultSettingsFile,
		"YAML file holding the user settings (ignored when --redis-addr is set)")
	cmd.Flags().StringVar(&config.Global.RedisAddr, "redis-addr", "",
		"Redis host:port for a shared settings store (env: RPLUS_REDIS_ADDR)\n"+
			"The password is read from RPLUS_REDIS_PASSWORD")
	cmd.Flags().IntVar(&config.Global.RedisDB, "redis-db", 0,
		"Redis database number")
	cmd.Flags().StringVar(&config.Global.RedisPrefix, "redis-prefix", config.DefaultRedisPrefix,
		"Prefix of the Redis keys, so several daemons can share a server")

	// Site client flags
	cmd.Flags().StringVar(&config.Global.AuthCookie, "auth-cookie", "",
		"Session cookie for authenticated requests (prefer env: RPLUS_AUTH_COOKIE)")
	cmd.Flags().DurationVar(&config.Global.SiteTimeout, "site-timeout", config.DefaultSiteTimeout,
		"Timeout of a single request to the site")

	// Presence batching flags
	cmd.Flags().IntVar(&config.Global.PresenceMaxSize, "presence-batch-size", batching.DefaultMaxSize,
		"Users per bulk presence request")
	cmd.Flags().DurationVar(&config.Global.PresenceMinimumDelay, "presence-delay", batching.DefaultMinimumDelay,
		"Minimum gap between two bulk presence requests")
	cmd.Flags().IntVar(&config.Global.PresenceParallelism, "presence-parallelism", batching.DefaultLevelOfParallelism,
		"Bulk presence requests allowed in flight at once")

	// Operational flags
	cmd.Flags().StringVar(&config.Global.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().StringVar(&config.Global.LogFile, "log-file", "",
		"Write logs to this file instead of stdout, rotating by size")
	cmd.Flags().IntVar(&config.Global.LogMaxSizeMB, "log-max-size", config.DefaultLogMaxSizeMB,
		"Rotate the log file after this many megabytes")
	cmd.Flags().IntVar(&config.Global.LogMaxBackups, "log-max-backups", 3,
		"Rotated log files to keep")
	cmd.Flags().IntVar(&config.Global.MaxPorts, "max-ports", config.DefaultMaxPorts,
		"Ports to try when the default API port is in use")
}

// CheckExplicitFlags checks if flags were explicitly set by the user
func CheckExplicitFlags(cmd *cobra.Command) {
	config.Global.SetExplicitlySet(config.APIAddrField, cmd.Flags().Changed("api"))
	config.Global.SetExplicitlySet(config.LogFileField, cmd.Flags().Changed("log-file"))
	config.Global.SetExplicitlySet(config.SettingsFileField, cmd.Flags().Changed("settings-file"))
}
