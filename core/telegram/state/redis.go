package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores records under "<prefix>:<user id>" and lets redis expire them.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a redis backend on an existing client.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (s *RedisBackend) key(userID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

// Load retrieves the user's record.
func (s *RedisBackend) Load(ctx context.Context, userID int64) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save writes the record with SET EX; a zero ttl stores it without expiry.
func (s *RedisBackend) Save(ctx context.Context, userID int64, record []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(userID), record, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the user's record.
func (s *RedisBackend) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
