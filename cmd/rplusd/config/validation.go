package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/validate"
)

// InitializeConfig applies environment variable overrides and fills defaults
// the flags cannot express. Runs before ValidateConfig.
func InitializeConfig() {
	if os.Getenv("DEBUG") == "true" {
		Global.LogLevel = "DEBUG"
		logging.Info("DEBUG environment variable detected, setting log level to DEBUG")
	}

	// Flags win over the environment for everything except secrets
	if Global.AuthCookie == "" {
		Global.AuthCookie = os.Getenv("RPLUS_AUTH_COOKIE")
	}
	if Global.RedisAddr == "" {
		if addr := os.Getenv("RPLUS_REDIS_ADDR"); addr != "" {
			Global.RedisAddr = addr
			logging.Info("RPLUS_REDIS_ADDR environment variable detected, using Redis at %s", addr)
		}
	}
	if password := os.Getenv("RPLUS_REDIS_PASSWORD"); password != "" {
		Global.RedisPassword = password
	}

	if Global.MaxPorts == 0 {
		Global.MaxPorts = DefaultMaxPorts
	}
	if maxPortsEnv := os.Getenv("MAX_PORTS"); maxPortsEnv != "" {
		if maxPorts, err := strconv.Atoi(maxPortsEnv); err == nil {
			Global.MaxPorts = maxPorts
			logging.Info("MAX_PORTS environment variable detected, setting max ports to %d", maxPorts)
		} else {
			logging.Warn("Invalid MAX_PORTS environment variable '%s', using default: %d", maxPortsEnv, Global.MaxPorts)
		}
	}
}

// ValidateConfig validates and normalizes the daemon configuration before
// any service starts. It splits the API address into host and port, and
// rejects settings store, site client and batching parameters that would
// only fail later at runtime.
func ValidateConfig() error {
	if Global.MaxPorts < 1 || Global.MaxPorts > 1000 {
		logging.Error("Invalid max-ports value: %d (must be between 1 and 1000)", Global.MaxPorts)
		return fmt.Errorf("max-ports must be between 1 and 1000, got: %d", Global.MaxPorts)
	}

	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	apiNetAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address: %w", err)
	}
	// rplusctl finds the daemon by port, so an explicit address needs a real one
	if Global.apiAddrExplicitlySet {
		if err := validate.ValidateField(apiNetAddr.Port, "required,min=1,max=65535"); err != nil {
			logging.Error("API port cannot be 0 (auto-assigned) - rplusctl needs a known port")
			return fmt.Errorf("API address requires specific port (not 0): %w", err)
		}
	}
	Global.APIAddr = apiNetAddr.Host
	Global.APIPort = apiNetAddr.Port

	if Global.LogFile != "" && Global.LogMaxSizeMB < 1 {
		return fmt.Errorf("log-max-size must be at least 1 MB, got: %d", Global.LogMaxSizeMB)
	}
	if Global.LogMaxBackups < 0 {
		return fmt.Errorf("log-max-backups cannot be negative, got: %d", Global.LogMaxBackups)
	}

	if Global.RedisAddr != "" {
		if err := validate.ValidateField(Global.RedisAddr, "hostname_port"); err != nil {
			logging.Error("Invalid Redis address '%s': %v", Global.RedisAddr, err)
			return fmt.Errorf("invalid Redis address '%s': expected host:port", Global.RedisAddr)
		}
		if Global.RedisDB < 0 || Global.RedisDB > 15 {
			return fmt.Errorf("redis-db must be between 0 and 15, got: %d", Global.RedisDB)
		}
		if Global.settingsFileExplicitlySet {
			logging.Warn("Both --redis-addr and --settings-file given; settings are kept in Redis")
		}
	} else if err := validate.ValidateRequiredString(Global.SettingsFile, "settings file"); err != nil {
		return err
	}

	if err := validate.ValidatePositiveTimeout(Global.SiteTimeout, "site timeout"); err != nil {
		return err
	}

	if err := PresenceBatchConfig().Validate(); err != nil {
		logging.Error("Invalid presence batching parameters: %v", err)
		return err
	}

	if Global.AuthCookie == "" {
		logging.Warn("No session cookie configured (set RPLUS_AUTH_COOKIE); navigation counters and item sales are disabled")
	}

	return nil
}

// PresenceBatchConfig returns the batching parameters of the presence
// coalescer.
func PresenceBatchConfig() *batching.Config {
	return &batching.Config{
		LevelOfParallelism: Global.PresenceParallelism,
		MaxSize:            Global.PresenceMaxSize,
		MinimumDelay:       Global.PresenceMinimumDelay,
	}
}
