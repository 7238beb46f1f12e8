// Package commands defines the command tree of rplusctl.
//
// COMMAND STRUCTURE:
//   - info, about, tasks: daemon status
//   - presence: user presence lookups and coalescer metrics
//   - nav: navbar Robux and friend-request counters
//   - settings: list, read and change user settings
//   - sales: the sales stat of an item
//   - transactions: per-item breakdown of a transactions export
//
// Commands only declare usage and flags; handlers are attached in main.
package commands

import (
	"github.com/spf13/cobra"
)

// Root command
var RootCmd = &cobra.Command{
	Use:   "rplusctl",
	Short: "CLI for the rplus daemon",
	Long: `rplus CLI (rplusctl) talks to a running rplusd over its local HTTP API.

Use it to look up user presence, watch the navbar counters, change
settings and summarize sales.`,
	SilenceUsage: true,
	Example: `  # Show daemon information
  rplusctl info

  # Look up where users are
  rplusctl presence get 1 156 261

  # Watch the navbar counters
  rplusctl nav --watch

  # Abbreviate Robux only from 10,000
  rplusctl settings set navigation-counter-abbreviation 10000

  # Connect to a daemon on another port, JSON output
  rplusctl --api=127.0.0.1:7421 -o json nav`,
}

// SetupCommands initializes all commands and their relationships
func SetupCommands() {
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(aboutCmd)
	RootCmd.AddCommand(tasksCmd)
	RootCmd.AddCommand(presenceCmd)
	RootCmd.AddCommand(navCmd)
	RootCmd.AddCommand(settingsCmd)
	RootCmd.AddCommand(salesCmd)
	RootCmd.AddCommand(transactionsCmd)

	presenceCmd.AddCommand(presenceGetCmd)
	presenceCmd.AddCommand(presenceMetricsCmd)

	settingsCmd.AddCommand(settingsLsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	transactionsCmd.AddCommand(transactionsSummarizeCmd)
}

// SetupGlobalFlags configures all global persistent flags
func SetupGlobalFlags(rootCmd *cobra.Command, apiAddrPtr *string, logLevelPtr *string,
	timeoutPtr *int, verbosePtr *bool, outputPtr *string, defaultAPIAddr string, defaultTimeout int) {
	rootCmd.PersistentFlags().StringVar(apiAddrPtr, "api", defaultAPIAddr,
		"rplusd API address")
	rootCmd.PersistentFlags().StringVar(logLevelPtr, "log-level", "ERROR",
		"Log level: DEBUG, INFO, WARN, ERROR")
	// Presence lookups wait for the daemon's batches
	rootCmd.PersistentFlags().IntVar(timeoutPtr, "timeout", defaultTimeout,
		"Request timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(verbosePtr, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVarP(outputPtr, "output", "o", "table",
		"Output format: table, json")
}
