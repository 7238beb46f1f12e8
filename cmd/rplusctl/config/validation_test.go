package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rplus-dev/rplus/internal/batching"
	configDefaults "github.com/rplus-dev/rplus/internal/config"
	"github.com/rplus-dev/rplus/internal/presence"
)

func TestValidateGlobalFlags(t *testing.T) {
	tests := []struct {
		name          string
		apiAddr       string
		output        string
		logLevel      string
		timeout       int
		errorContains string
	}{
		{name: "defaults_ok", apiAddr: DefaultAPIAddr, output: "table", logLevel: "ERROR", timeout: 8},
		{name: "json_ok", apiAddr: "192.168.1.20:7420", output: "json", logLevel: "DEBUG", timeout: 1},
		{name: "hostname_rejected", apiAddr: "localhost:7420", output: "table", logLevel: "ERROR", timeout: 8, errorContains: "invalid API address"},
		{name: "missing_port", apiAddr: "127.0.0.1", output: "table", logLevel: "ERROR", timeout: 8, errorContains: "invalid API address"},
		{name: "unroutable", apiAddr: "0.0.0.0:7420", output: "table", logLevel: "ERROR", timeout: 8, errorContains: "unroutable"},
		{name: "port_zero", apiAddr: "127.0.0.1:0", output: "table", logLevel: "ERROR", timeout: 8, errorContains: "API port"},
		{name: "bad_output", apiAddr: DefaultAPIAddr, output: "yaml", logLevel: "ERROR", timeout: 8, errorContains: "output format"},
		{name: "bad_log_level", apiAddr: DefaultAPIAddr, output: "table", logLevel: "TRACE", timeout: 8, errorContains: "log level"},
		{name: "zero_timeout", apiAddr: DefaultAPIAddr, output: "table", logLevel: "ERROR", timeout: 0, errorContains: "timeout"},
	}

	original := Global
	defer func() { Global = original }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Global.APIAddr = tt.apiAddr
			Global.Output = tt.output
			Global.LogLevel = tt.logLevel
			Global.Timeout = tt.timeout

			err := ValidateGlobalFlags(nil, nil)
			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("expected error containing %q, got %q", tt.errorContains, err.Error())
			}
		})
	}
}

func TestDefaultTimeoutCoversBulkLookup(t *testing.T) {
	batch := batching.DefaultConfig()
	fullLookup := time.Duration(presence.MaxBulkLookup/batch.MaxSize) * batch.MinimumDelay
	serverWrite := presence.MaxWait(*batch, presence.MaxBulkLookup, configDefaults.DefaultSiteTimeout) + configDefaults.ResponseSlack

	timeout := time.Duration(DefaultTimeout) * time.Second
	if timeout < serverWrite || timeout <= fullLookup {
		t.Errorf("DefaultTimeout = %s, want at least %s (full lookup %s)", timeout, serverWrite, fullLookup)
	}
}
