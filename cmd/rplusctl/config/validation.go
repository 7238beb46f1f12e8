package config

import (
	"fmt"

	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/validate"
	"github.com/spf13/cobra"
)

// ValidateGlobalFlags validates all global flags before running any command
func ValidateGlobalFlags(cmd *cobra.Command, args []string) error {
	if err := ValidateAPIAddress(); err != nil {
		return err
	}

	if err := ValidateOutputFormat(); err != nil {
		return err
	}

	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	if Global.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got: %d", Global.Timeout)
	}

	return nil
}

// ValidateAPIAddress validates the --api flag
func ValidateAPIAddress() error {
	netAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address - expected format: host:port (e.g., %s)", DefaultAPIAddr)
	}

	// Reject unroutable 0.0.0.0 target for client connections
	if netAddr.Host == "0.0.0.0" {
		logging.Error("Unroutable API address '0.0.0.0:%d' - cannot connect to 0.0.0.0", netAddr.Port)
		return fmt.Errorf("unroutable API address - use 127.0.0.1 or a specific IP address")
	}

	if err := validate.ValidatePortRange(netAddr.Port); err != nil {
		logging.Error("Invalid API port %d: %v", netAddr.Port, err)
		return fmt.Errorf("API port must be between 1-65535")
	}

	return nil
}

// ValidateOutputFormat validates the --output flag
func ValidateOutputFormat() error {
	if err := validate.ValidateOneOf(Global.Output, "output format", "table", "json"); err != nil {
		logging.Error("Invalid output format '%s' - valid formats are: table, json", Global.Output)
		return err
	}
	return nil
}
