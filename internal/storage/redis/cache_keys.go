package redis

import (
	"context"
	"fmt"
	"time"
)

const (
	SeenJobsTTL        = 90 * 24 * time.Hour
	RateLimitWindowTTL = 1 * time.Minute
)

func SeenJobsKey(chatID int64) string {
	return fmt.Sprintf("seen:chat:%d", chatID)
}

func RateLimitKey(userID int64) string {
	return fmt.Sprintf("ratelimit:user:%d", userID)
}

func (c *Cache) MarkSeen(ctx context.Context, chatID int64, jobIDs ...string) error {
	return c.AddToSet(ctx, SeenJobsKey(chatID), SeenJobsTTL, jobIDs...)
}

func (c *Cache) Unseen(ctx context.Context, chatID int64, jobIDs []string) ([]string, error) {
	return c.Missing(ctx, SeenJobsKey(chatID), jobIDs)
}

func (c *Cache) ForgetSeen(ctx context.Context, chatID int64) error {
	return c.Delete(ctx, SeenJobsKey(chatID))
}

func (c *Cache) IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(userID), RateLimitWindowTTL)
}

func (c *Cache) GetUserRateLimit(ctx context.Context, userID int64) (int64, error) {
	return c.GetInt(ctx, RateLimitKey(userID))
}
