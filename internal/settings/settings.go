package settings

import (
	"context"
	"fmt"
	"sort"

	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/validate"
)

// Settings is the typed accessor the rest of the daemon reads preferences
// through. Unset known keys resolve to their definition's default.
type Settings struct {
	store Store
}

// New wraps store.
func New(store Store) *Settings {
	return &Settings{store: store}
}

// Store returns the backing store.
func (s *Settings) Store() Store {
	return s.store
}

// Value returns the stored value of key, or its default when unset. Store
// failures are wrapped in ErrSettingsUnavailable.
func (s *Settings) Value(ctx context.Context, key string) (any, error) {
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSettingsUnavailable, key, err)
	}
	if !found {
		if def, ok := Lookup(key); ok {
			return def.Default, nil
		}
		return nil, nil
	}
	return value, nil
}

// Bool reads a boolean setting. Any failure logs a warning and returns
// fallback.
func (s *Settings) Bool(ctx context.Context, key string, fallback bool) bool {
	value, err := s.Value(ctx, key)
	if err != nil {
		logging.Warn("Settings: Failed to fetch %s, using %v: %v", key, fallback, err)
		return fallback
	}
	if value == nil {
		return fallback
	}
	b, ok := value.(bool)
	if !ok {
		logging.Warn("Settings: %s holds %T, expected bool", key, value)
		return fallback
	}
	return b
}

// Number reads a numeric setting. Any failure logs a warning and returns
// fallback.
func (s *Settings) Number(ctx context.Context, key string, fallback float64) float64 {
	value, err := s.Value(ctx, key)
	if err != nil {
		logging.Warn("Settings: Failed to fetch %s, using %v: %v", key, fallback, err)
		return fallback
	}
	if value == nil {
		return fallback
	}
	n, ok := toNumber(value)
	if !ok {
		logging.Warn("Settings: %s holds %T, expected number", key, value)
		return fallback
	}
	return n
}

// Toggle reads a feature switch. A switch that cannot be read is off.
func (s *Settings) Toggle(ctx context.Context, key string) bool {
	return s.Bool(ctx, key, false)
}

// Set validates and stores a value. A nil value resets key to its default
// by removing it from the store.
func (s *Settings) Set(ctx context.Context, key string, value any) error {
	if value == nil {
		return s.Reset(ctx, key)
	}
	if err := CheckValue(key, value); err != nil {
		return err
	}
	// Numbers are stored as float64 so every store round-trips them alike
	if n, ok := toNumber(value); ok {
		value = n
	}
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrSettingsUnavailable, key, err)
	}
	logging.Debug("Settings: %s set to %v", key, value)
	return nil
}

// Reset removes the stored value of key. Known keys fall back to their
// default, unknown keys disappear from All.
func (s *Settings) Reset(ctx context.Context, key string) error {
	if err := validate.SettingKeyFormat(key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: reset %s: %v", ErrSettingsUnavailable, key, err)
	}
	logging.Debug("Settings: %s reset", key)
	return nil
}

// Entry is one setting as listed by All.
type Entry struct {
	Key         string `json:"key"`
	Value       any    `json:"value"`
	Kind        Kind   `json:"kind,omitempty"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// All lists every known setting plus any unknown stored keys, sorted by key.
func (s *Settings) All(ctx context.Context) ([]Entry, error) {
	stored, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrSettingsUnavailable, err)
	}

	entries := make([]Entry, 0, len(Definitions)+len(stored))
	for _, def := range Definitions {
		entry := Entry{
			Key:         def.Key,
			Value:       def.Default,
			Kind:        def.Kind,
			Default:     def.Default,
			Description: def.Description,
			IsDefault:   true,
		}
		if v, ok := stored[def.Key]; ok {
			entry.Value = v
			entry.IsDefault = false
		}
		entries = append(entries, entry)
	}
	for key, value := range stored {
		if _, known := Lookup(key); !known {
			entries = append(entries, Entry{Key: key, Value: value})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// ListenForChanges calls fn with the current value of key and then again
// with every new value, until ctx is done. fn runs on a single goroutine,
// so calls never overlap.
func (s *Settings) ListenForChanges(ctx context.Context, key string, fn func(value any)) error {
	changes, err := s.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("%w: watch %s: %v", ErrSettingsUnavailable, key, err)
	}

	current, err := s.Value(ctx, key)
	if err != nil {
		logging.Warn("Settings: Failed to fetch %s: %v", key, err)
	}

	go func() {
		fn(current)
		for change := range changes {
			if change.Key != key {
				continue
			}
			value := change.Value
			if value == nil {
				if def, ok := Lookup(key); ok {
					value = def.Default
				}
			}
			fn(value)
		}
	}()
	return nil
}
