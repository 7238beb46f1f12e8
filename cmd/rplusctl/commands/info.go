package commands

import (
	"github.com/spf13/cobra"
)

// Info command (daemon health and version)
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show daemon information",
	Long:  `Show the daemon's version, health and uptime.`,
	Example: `  rplusctl info
  rplusctl -o json info`,
	Args: cobra.NoArgs,
}

// About command (about page tabs)
var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show the about page tabs",
	Example: `  rplusctl about
  rplusctl about --tab=support`,
	Args: cobra.NoArgs,
}

// Tasks command (periodic task counters)
var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Short:   "List the daemon's periodic tasks",
	Long:    `List the daemon's periodic tasks with their run and failure counts.`,
	Example: `  rplusctl tasks`,
	Args:    cobra.NoArgs,
}

// SetupInfoFlags configures flags for the info-type commands
func SetupInfoFlags(tabPtr *string) {
	aboutCmd.Flags().StringVar(tabPtr, "tab", "", "Tab to select: support, privacy-policy, terms-of-service")
}

// GetInfoCommands returns the info, about and tasks commands for handler assignment
func GetInfoCommands() (*cobra.Command, *cobra.Command, *cobra.Command) {
	return infoCmd, aboutCmd, tasksCmd
}
