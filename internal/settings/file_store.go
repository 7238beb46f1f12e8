package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps settings in a YAML file. The file is read once on open and
// rewritten through a temporary file and rename on every write, so a crash
// never leaves it half written.
type FileStore struct {
	path string

	mu     sync.RWMutex
	values map[string]any
	events *broadcaster
}

// OpenFileStore loads path, creating its directory if needed. A missing file
// is treated as an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	values := make(map[string]any)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
		if values == nil {
			values = make(map[string]any)
		}
	}

	return &FileStore{
		path:   path,
		values: values,
		events: newBroadcaster(),
	}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	previous, existed := s.values[key]
	s.values[key] = value
	if err := s.flushLocked(); err != nil {
		if existed {
			s.values[key] = previous
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.events.publish(Change{Key: key, Value: value})
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	previous, existed := s.values[key]
	if !existed {
		s.mu.Unlock()
		s.events.publish(Change{Key: key})
		return nil
	}
	delete(s.values, key)
	if err := s.flushLocked(); err != nil {
		s.values[key] = previous
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.events.publish(Change{Key: key})
	return nil
}

func (s *FileStore) All(_ context.Context) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	return s.events.subscribe(ctx), nil
}

func (s *FileStore) Close() error {
	return nil
}

// flushLocked writes the whole map. Caller holds s.mu.
func (s *FileStore) flushLocked() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
