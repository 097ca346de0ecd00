package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"padelchat/internal/config"
	"padelchat/internal/model"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "padelchat:session:"

// RedisStore keeps contexts in Redis as JSON so several server instances can
// share sessions. Load and Save both restart the key's TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Ping tests the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*model.ConversationContext, error) {
	key := redisKeyPrefix + sessionID
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, key, s.ttl)
	} else {
		cmd = s.client.Get(ctx, key)
	}
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return &model.ConversationContext{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var c model.ConversationContext
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *model.ConversationContext) error {
	if c.IsEmpty() {
		return s.Clear(ctx, sessionID)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
