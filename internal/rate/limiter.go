// Package rate throttles request volume per client address with Redis
// counters. The limiter runs in front of every route and fails closed:
// infrastructure trouble is reported as a retryable 429, never as a
// transport error.
package rate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/cache"
)

// Config tunes the limiter.
type Config struct {
	// Window is the renewing interval over which requests are counted.
	// Default 30 seconds.
	Window time.Duration
	// Ceiling is the maximum request count inside a window. Default 20.
	// Set very high in test/CI configurations to effectively disable.
	Ceiling int64
}

// Limiter counts requests per client address.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client, defaulting any
// zero config fields.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Second
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = 20
	}
	return &Limiter{redis: client, config: cfg}
}

// Allow records one request from addr and reports whether it stays inside
// the budget. The key's expiry is reset to the full window on every
// increment, so a continuously active address never sees its window lapse;
// only a quiet period longer than the window clears the count.
//
// Returns ErrTooManyRequests past the ceiling and
// ErrTooManyRequestsTryAgain on any cache failure.
func (l *Limiter) Allow(ctx context.Context, addr string) error {
	key := cache.RatePrefix + addr

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return apperr.Wrap(apperr.ErrTooManyRequestsTryAgain, err)
	}

	if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
		return apperr.Wrap(apperr.ErrTooManyRequestsTryAgain, err)
	}

	if count > l.config.Ceiling {
		return apperr.ErrTooManyRequests
	}

	return nil
}
