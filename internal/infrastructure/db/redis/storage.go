package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a key-value medium kept in Redis, for clients that share a
// device profile across hosts.
// Key format: storage:<profile>:<key>
type Storage struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

// NewStorage scopes keys to profile. A positive ttl makes stored values
// expire; zero keeps them until removed.
func NewStorage(client *redis.Client, profile string, ttl time.Duration) *Storage {
	if profile == "" {
		profile = "default"
	}
	return &Storage{client: client, profile: profile, ttl: ttl}
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage get: %w", err)
	}
	return v, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage set: %w", err)
	}
	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	return nil
}

func (s *Storage) key(key string) string {
	return fmt.Sprintf("storage:%s:%s", s.profile, key)
}
