package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	MaxRequestsPerMinute = 30
)

// Limiter counts requests per user in the current window.
type Limiter interface {
	IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error)
}

func RateLimit(limiter Limiter, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			count, err := limiter.IncrementUserRateLimit(ctx, user.ID)
			if err != nil {
				logger.Error("failed to check rate limit",
					zap.Int64("user_id", user.ID),
					zap.Error(err),
				)
				return next(c)
			}

			if count > MaxRequestsPerMinute {
				logger.Warn("rate limit exceeded",
					zap.Int64("user_id", user.ID),
					zap.Int64("count", count),
				)

				return c.Reply(fmt.Sprintf(
					"⚠️ Too many requests. Please wait a minute.\n"+
						"Limit: %d requests per minute.",
					MaxRequestsPerMinute,
				))
			}

			return next(c)
		}
	}
}

// MemoryLimiter is a fixed-window Limiter for running without Redis.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	windows map[int64]*window
}

type window struct {
	start time.Time
	count int64
}

func NewMemoryLimiter(size time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		window:  size,
		now:     time.Now,
		windows: make(map[int64]*window),
	}
}

func (l *MemoryLimiter) IncrementUserRateLimit(_ context.Context, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[userID] = w
	}

	w.count++
	return w.count, nil
}
