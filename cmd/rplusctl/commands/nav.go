package commands

import (
	"github.com/spf13/cobra"
)

// Nav command (navbar counters)
var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Show the navbar Robux and friend-request counters",
	Long: `Show the navbar counters as rendered by the daemon.

The Robux count is abbreviated from the navigation-counter-abbreviation
setting, and the DevEx estimate is shown when show-devex-rate is on.`,
	Example: `  rplusctl nav
  rplusctl nav --refresh
  rplusctl nav --watch`,
	Args: cobra.NoArgs,
}

// SetupNavFlags configures flags for the nav command
func SetupNavFlags(watchPtr, refreshPtr *bool) {
	navCmd.Flags().BoolVarP(watchPtr, "watch", "w", false, "Watch for live updates")
	navCmd.Flags().BoolVar(refreshPtr, "refresh", false, "Refetch the counters before displaying")
}

// GetNavCommand returns the nav command for handler assignment
func GetNavCommand() *cobra.Command {
	return navCmd
}
