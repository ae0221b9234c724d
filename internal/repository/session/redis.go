package session

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
)

// RedisStore keeps the recently-seen identifier log in a Redis list, so
// session memory survives restarts and is shared across replicas.
type RedisStore struct {
	client rueidis.Client
	key    string
	max    int
}

// RedisConfig holds connection parameters for the Redis session store.
type RedisConfig struct {
	Addrs     []string
	Password  string
	KeyPrefix string
	Max       int
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	max := cfg.Max
	if max < 1 {
		max = 1
	}
	return &RedisStore{client: client, key: cfg.KeyPrefix + "session:recent", max: max}, nil
}

// Append records identifiers as the most recently seen and trims the log to
// its cap.
func (s *RedisStore) Append(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	// LPUSH prepends left-to-right; reverse so one append keeps its order,
	// matching the in-memory store.
	reversed := make([]string, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	push := s.client.B().Lpush().Key(s.key).Element(reversed...).Build()
	if err := s.client.Do(ctx, push).Error(); err != nil {
		return fmt.Errorf("session append: %w", err)
	}
	trim := s.client.B().Ltrim().Key(s.key).Start(0).Stop(int64(s.max - 1)).Build()
	if err := s.client.Do(ctx, trim).Error(); err != nil {
		return fmt.Errorf("session trim: %w", err)
	}
	return nil
}

// Recent returns up to n identifiers, most recent first.
func (s *RedisStore) Recent(ctx context.Context, n int) ([]string, error) {
	cmd := s.client.B().Lrange().Key(s.key).Start(0).Stop(int64(n - 1)).Build()
	ids, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("session recent: %w", err)
	}
	return ids, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *RedisStore) Close() {
	s.client.Close()
}
