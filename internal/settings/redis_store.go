package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rplus-dev/rplus/internal/logging"
)

// RedisConfig holds the connection settings of a RedisStore.
type RedisConfig struct {
	Addr     string        `json:"addr"`
	Password string        `json:"-"`
	DB       int           `json:"db"`
	Prefix   string        `json:"prefix"`
	Timeout  time.Duration `json:"timeout"`
}

// RedisStore keeps settings in a Redis hash and announces every write on a
// pub/sub channel, so several daemons can share one set of preferences.
type RedisStore struct {
	client  redis.UniversalClient
	hash    string
	channel string
	owned   bool
}

// NewRedisStore connects with cfg and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", ErrSettingsUnavailable, cfg.Addr, err)
	}

	store := NewRedisStoreFromClient(client, cfg.Prefix)
	store.owned = true
	return store, nil
}

// NewRedisStoreFromClient wraps an existing client. The client is not closed
// by Close.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rplus:"
	}
	return &RedisStore{
		client:  client,
		hash:    prefix + "settings",
		channel: prefix + "settings:changes",
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	raw, err := s.client.HGet(ctx, s.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis HGET %s: %w", key, err)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("corrupt value for %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	event, err := json.Marshal(Change{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to encode change of %s: %w", key, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.hash, key, raw)
		pipe.Publish(ctx, s.channel, event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	event, err := json.Marshal(Change{Key: key})
	if err != nil {
		return fmt.Errorf("failed to encode change of %s: %w", key, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.hash, key)
		pipe.Publish(ctx, s.channel, event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) All(ctx context.Context) (map[string]any, error) {
	raw, err := s.client.HGetAll(ctx, s.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL: %w", err)
	}

	out := make(map[string]any, len(raw))
	for key, encoded := range raw {
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			logging.Warn("Settings: Skipping corrupt value for %s: %v", key, err)
			continue
		}
		out[key] = value
	}
	return out, nil
}

// Watch subscribes to the change channel. The subscription is confirmed
// before Watch returns, so no Set issued afterwards is missed.
func (s *RedisStore) Watch(ctx context.Context) (<-chan Change, error) {
	sub := s.client.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", s.channel, err)
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					logging.Warn("Settings: Ignoring malformed change event: %v", err)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
