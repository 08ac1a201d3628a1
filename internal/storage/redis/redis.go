// Package redis keeps the bot's short-lived state: which jobs a chat has
// already been notified about and per-user command rate limits.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache represents redis client
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

func New(addr, password string, db int, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("successfully connected to Redis", zap.String("addr", addr))

	return NewWithClient(client, logger), nil
}

func NewWithClient(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		c.logger.Error("failed to delete cache",
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("delete cache: %w", err)
	}

	return nil
}

// IncrementWithExpiry increments counter and restarts its TTL window
func (c *Cache) IncrementWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := c.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		c.logger.Error("failed to increment with expiry",
			zap.String("key", key),
			zap.Error(err),
		)
		return 0, fmt.Errorf("increment with expiry: %w", err)
	}

	return incrCmd.Val(), nil
}

func (c *Cache) GetInt(ctx context.Context, key string) (int64, error) {
	value, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.Error("failed to get int",
			zap.String("key", key),
			zap.Error(err),
		)
		return 0, fmt.Errorf("get int: %w", err)
	}

	return value, nil
}

// AddToSet adds members to the set at key and refreshes its TTL.
func (c *Cache) AddToSet(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}

	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}

	pipe := c.client.Pipeline()
	pipe.SAdd(ctx, key, args...)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("failed to add to set",
			zap.String("key", key),
			zap.Int("count", len(members)),
			zap.Error(err),
		)
		return fmt.Errorf("add to set: %w", err)
	}

	return nil
}

// Missing returns the candidates that are not in the set at key, keeping
// their order.
func (c *Cache) Missing(ctx context.Context, key string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return []string{}, nil
	}

	args := make([]interface{}, len(candidates))
	for i, m := range candidates {
		args[i] = m
	}

	present, err := c.client.SMIsMember(ctx, key, args...).Result()
	if err != nil {
		c.logger.Error("failed to check set members",
			zap.String("key", key),
			zap.Int("count", len(candidates)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("check set members: %w", err)
	}

	missing := make([]string, 0, len(candidates))
	for i, ok := range present {
		if !ok {
			missing = append(missing, candidates[i])
		}
	}

	return missing, nil
}
