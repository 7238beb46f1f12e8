package batching

import (
	"fmt"
	"time"

	"github.com/rplus-dev/rplus/internal/validate"
)

const (
	// DefaultLevelOfParallelism keeps dispatches strictly serial
	DefaultLevelOfParallelism = 1

	// DefaultMaxSize is the largest number of keys sent in one bulk call
	DefaultMaxSize = 100

	// DefaultMinimumDelay is the minimum gap between two dispatch starts
	DefaultMinimumDelay = 10 * time.Second
)

// Config holds the parameters that decide when a batch leaves the queue.
// A batch is bounded both by MaxSize and by MinimumDelay measured from the
// previous dispatch start, and no more than LevelOfParallelism batches are
// ever outstanding at the same time.
type Config struct {
	LevelOfParallelism int           `json:"level_of_parallelism" validate:"min=1,max=64"`
	MaxSize            int           `json:"max_size" validate:"min=1,max=10000"`
	MinimumDelay       time.Duration `json:"minimum_delay" validate:"gte=0"`
}

// DefaultConfig returns the configuration used for the presence lookups:
// one call at a time, 100 keys per call, 10 seconds between calls.
func DefaultConfig() *Config {
	return &Config{
		LevelOfParallelism: DefaultLevelOfParallelism,
		MaxSize:            DefaultMaxSize,
		MinimumDelay:       DefaultMinimumDelay,
	}
}

// Validate checks the configuration with the shared validator. The returned
// error wraps ErrInvalidConfig so callers can test for it with errors.Is.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
