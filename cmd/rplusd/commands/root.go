// Package commands provides the CLI command structure for the rplus daemon.
//
// rplusd has a single root command. Flags configure the API listener, the
// settings store, the site client and the presence coalescer; PreRunE
// applies environment overrides and validates everything before the daemon
// opens a single connection.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rplus-dev/rplus/cmd/rplusd/config"
	"github.com/rplus-dev/rplus/cmd/rplusd/daemon"
	"github.com/rplus-dev/rplus/cmd/rplusd/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/version"
	"github.com/spf13/cobra"
)

// Log file handle, closed on exit
var logFileHandle io.Closer

// CleanupLogFile closes the log file if one is open.
func CleanupLogFile() {
	if logFileHandle != nil {
		if err := logFileHandle.Close(); err != nil {
			// The logger may be writing to this very file
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logFileHandle = nil
	}
}

// Root command for the rplus daemon
var RootCmd = &cobra.Command{
	Use:   "rplusd",
	Short: "Local companion daemon for Roblox+ features",
	Long: `rplus daemon (rplusd) runs the background side of Roblox+.

It coalesces presence lookups into bulk requests, keeps the navbar Robux
and friend-request counters fresh, stores user settings and serves all of it
over a local HTTP API used by rplusctl.

The session cookie is read from RPLUS_AUTH_COOKIE. Without it the daemon runs
anonymously and only presence lookups are available.`,
	Version:      version.RplusdVersion,
	SilenceUsage: true, // Don't show usage on errors
	Example: `  # Start with defaults (API on 127.0.0.1:7420, settings in ./data/settings.yaml)
  RPLUS_AUTH_COOKIE=... rplusd

  # Share settings between machines through Redis
  rplusd --redis-addr=127.0.0.1:6379

  # Faster presence batches and a rotated log file
  rplusd --presence-delay=2s --log-file=/var/log/rplusd.log`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Display logo first, before any validation or logging
		utils.DisplayLogo(version.RplusdVersion)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		CheckExplicitFlags(cmd)

		if config.Global.IsExplicitlySet(config.LogFileField) && config.Global.LogFile != "" {
			logDir := filepath.Dir(config.Global.LogFile)
			if err := os.MkdirAll(logDir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
			}

			closer, err := logging.SetOutputFile(logging.FileConfig{
				Path:       config.Global.LogFile,
				MaxSizeMB:  config.Global.LogMaxSizeMB,
				MaxBackups: config.Global.LogMaxBackups,
				Compress:   true,
			})
			if err != nil {
				return err
			}
			logFileHandle = closer
		}

		// Set the level before InitializeConfig logs, then again for DEBUG=true
		logging.SetLevel(config.Global.LogLevel)
		config.InitializeConfig()
		logging.SetLevel(config.Global.LogLevel)

		if err := config.ValidateConfig(); err != nil {
			CleanupLogFile()
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer CleanupLogFile()
		return daemon.Run(cmd.Context())
	},
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	SetupFlags(RootCmd)
}
