// Package ratelimit implements a Redis-backed fixed-window request
// limiter keyed by client IP. It fails open: when Redis is unreachable
// the contact form keeps working.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger zerolog.Logger
}

func NewLimiter(client *redis.Client, perMinute int, logger zerolog.Logger) *Limiter {
	return &Limiter{
		client: client,
		limit:  perMinute,
		window: time.Minute,
		logger: logger,
	}
}

// Allow counts the request against the caller's current window and
// reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, ip string) bool {
	key := windowKey(ip, time.Now(), l.window)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn().Err(err).Msg("Rate limit check failed, allowing request")
		return true
	}
	if n == 1 {
		l.client.Expire(ctx, key, l.window)
	}

	return n <= int64(l.limit)
}

// windowKey buckets time into fixed windows so every request in the same
// window increments the same counter.
func windowKey(ip string, now time.Time, window time.Duration) string {
	return fmt.Sprintf("ratelimit:%s:%d", ip, now.Unix()/int64(window.Seconds()))
}
