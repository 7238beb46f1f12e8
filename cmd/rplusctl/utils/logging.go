// Package utils provides utility functions for the rplusctl CLI.
package utils

import (
	"os"

	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/internal/logging"
)

// SetupLogging enables debug output when DEBUG=true and otherwise keeps the
// terminal to command output and errors.
func SetupLogging() {
	if os.Getenv("DEBUG") == "true" {
		logging.RestoreOutput()
		logging.SetLevel("DEBUG")
		return
	}

	logging.SetLevel(config.Global.LogLevel)
	if !config.Global.Verbose {
		logging.SuppressOutput()
	}
}
