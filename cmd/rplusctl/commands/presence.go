package commands

import (
	"github.com/spf13/cobra"
)

// Presence command (parent command for presence operations)
var presenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "Look up user presence",
	Long: `Look up where users are on the site.

Lookups are coalesced by the daemon into bulk requests, 100 users per
request and at most one request every 10 seconds, so a lookup can take
a few seconds to return.`,
}

var presenceGetCmd = &cobra.Command{
	Use:   "get USER_ID [USER_ID...]",
	Short: "Show the presence of one or more users",
	Example: `  rplusctl presence get 1
  rplusctl presence get 1 156 261
  rplusctl presence get 1,156,261`,
	Args: cobra.MinimumNArgs(1),
}

var presenceMetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the presence coalescer counters",
	Args:  cobra.NoArgs,
}

// GetPresenceCommands returns presence subcommands for handler assignment
func GetPresenceCommands() (*cobra.Command, *cobra.Command) {
	return presenceGetCmd, presenceMetricsCmd
}
