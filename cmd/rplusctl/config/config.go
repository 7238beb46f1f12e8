// Package config provides configuration management for the rplusctl CLI.
package config

import (
	"math"

	"github.com/rplus-dev/rplus/internal/batching"
	configDefaults "github.com/rplus-dev/rplus/internal/config"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/version"
)

// DefaultAPIAddr is the address rplusd listens on unless told otherwise
var DefaultAPIAddr = configDefaults.DefaultAPIAddr()

// DefaultTimeout is the request timeout in seconds. It outlasts the longest
// bulk presence lookup a default daemon allows, so the CLI sees the daemon's
// answer rather than giving up first.
var DefaultTimeout = int(math.Ceil((presence.MaxWait(*batching.DefaultConfig(), presence.MaxBulkLookup,
	configDefaults.DefaultSiteTimeout) + configDefaults.ResponseSlack).Seconds()))

// Version returns the current rplusctl CLI version from the centralized version package
var Version = version.RplusctlVersion

// Global holds the global CLI configuration
var Global struct {
	APIAddr  string // Address of the rplusd API server
	LogLevel string // Log level for CLI operations
	Timeout  int    // Connection timeout in seconds
	Verbose  bool   // Show verbose output
	Output   string // Output format: table, json
}

// Nav holds the nav command configuration
var Nav struct {
	Watch   bool // Redraw the counters every interval
	Refresh bool // Ask the daemon to refetch before displaying
}

// Transactions holds the transactions command configuration
var Transactions struct {
	File string // JSON file of transactions, "-" for stdin
	Top  int    // Show only the N busiest items (0 = all)
}

// About holds the about command configuration
var About struct {
	Tab string // Tab path to select
}
