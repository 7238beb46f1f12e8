package logging

import "fmt"

// ValidLogLevels is the set of log levels accepted by the daemon and CLI
// flags. Level strings are uppercase.
var ValidLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// IsValidLogLevel checks if the provided log level string is supported.
func IsValidLogLevel(level string) bool {
	return ValidLogLevels[level]
}

// ValidateLogLevel validates a log level string and returns an error if invalid.
func ValidateLogLevel(level string) error {
	if !IsValidLogLevel(level) {
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}
