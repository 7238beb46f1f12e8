// Package settings stores the user's preferences and notifies listeners when
// they change. Reads never fail hard: a broken store logs a warning and the
// caller's fallback is used.
//
// STORES:
//   - MemoryStore: process-local map, used by tests and ephemeral daemons
//   - FileStore: YAML file on disk, rewritten atomically on every Set
//   - RedisStore: Redis hash plus a pub/sub channel for change notification
package settings

import (
	"errors"
	"fmt"
	"math"

	"github.com/rplus-dev/rplus/internal/validate"
)

// Known setting keys.
const (
	KeyCounterAbbreviation = "navigation-counter-abbreviation"
	KeyRobuxLive           = "navigation-robux-live"
	KeyShowDevexRate       = "show-devex-rate"
	KeyNavCounter          = "navcounter"
	KeyItemSalesCounter    = "itemSalesCounter"
)

var (
	// ErrSettingsUnavailable wraps any failure to reach the backing store.
	ErrSettingsUnavailable = errors.New("settings unavailable")

	// ErrInvalidValue is returned when a known setting is given a value of
	// the wrong type.
	ErrInvalidValue = errors.New("invalid setting value")
)

// Kind is the value type of a setting.
type Kind string

const (
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
	KindToggle Kind = "toggle" // A feature switch; stored as a bool
)

// Definition describes a known setting.
type Definition struct {
	Key         string `json:"key"`
	Kind        Kind   `json:"kind"`
	Default     any    `json:"default"`
	Description string `json:"description"`
}

// Definitions lists the settings the daemon reads.
var Definitions = []Definition{
	{
		Key:         KeyCounterAbbreviation,
		Kind:        KindNumber,
		Default:     float64(1000),
		Description: "Robux count at which the navigation counter abbreviates (K, M, B, T)",
	},
	{
		Key:         KeyRobuxLive,
		Kind:        KindBool,
		Default:     false,
		Description: "Refresh the Robux balance every 250ms",
	},
	{
		Key:         KeyShowDevexRate,
		Kind:        KindBool,
		Default:     false,
		Description: "Show the DevEx estimate under the Robux balance",
	},
	{
		Key:         KeyNavCounter,
		Kind:        KindToggle,
		Default:     true,
		Description: "Refresh navigation counters from the network",
	},
	{
		Key:         KeyItemSalesCounter,
		Kind:        KindToggle,
		Default:     true,
		Description: "Show the sales count on items you created",
	},
}

// Lookup returns the definition of key, if it is known.
func Lookup(key string) (Definition, bool) {
	for _, def := range Definitions {
		if def.Key == key {
			return def, true
		}
	}
	return Definition{}, false
}

// CheckValue validates key and, for known settings, the value's type.
// Unknown keys accept any non-null JSON scalar. Null is handled by Reset.
func CheckValue(key string, value any) error {
	if err := validate.SettingKeyFormat(key); err != nil {
		return err
	}

	def, known := Lookup(key)
	if !known {
		switch value.(type) {
		case bool, string:
			return nil
		}
		if _, ok := toNumber(value); ok {
			return nil
		}
		return fmt.Errorf("%w: %s must be a bool, number or string", ErrInvalidValue, key)
	}

	switch def.Kind {
	case KindBool, KindToggle:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
		}
	case KindNumber:
		n, ok := toNumber(value)
		if !ok || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidValue, key)
		}
	}
	return nil
}

// toNumber converts the numeric types produced by JSON and YAML decoding.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
