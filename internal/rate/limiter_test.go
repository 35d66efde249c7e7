package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, cfg), mr
}

func TestAllowUnderCeiling(t *testing.T) {
	l, _ := newTestLimiter(t, Config{Window: 30 * time.Second, Ceiling: 20})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, l.Allow(ctx, "10.0.0.1"), "request %d", i+1)
	}
}

func TestTwentyFirstRequestIsRejected(t *testing.T) {
	l, _ := newTestLimiter(t, Config{Window: 30 * time.Second, Ceiling: 20})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	}

	err := l.Allow(ctx, "10.0.0.1")
	assert.True(t, errors.Is(err, apperr.ErrTooManyRequests))
}

func TestAddressesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, Config{Window: 30 * time.Second, Ceiling: 1})
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	require.Error(t, l.Allow(ctx, "10.0.0.1"))
	require.NoError(t, l.Allow(ctx, "10.0.0.2"))
}

func TestWindowRenewsOnEveryRequest(t *testing.T) {
	l, mr := newTestLimiter(t, Config{Window: 30 * time.Second, Ceiling: 3})
	ctx := context.Background()

	// Keep the address active: 20s apart, each request inside the previous
	// window. The counter must keep climbing because the expiry renews.
	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	mr.FastForward(20 * time.Second)
	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	mr.FastForward(20 * time.Second)
	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	mr.FastForward(20 * time.Second)

	err := l.Allow(ctx, "10.0.0.1")
	assert.True(t, errors.Is(err, apperr.ErrTooManyRequests))
}

func TestQuietPeriodResetsCounter(t *testing.T) {
	l, mr := newTestLimiter(t, Config{Window: 30 * time.Second, Ceiling: 2})
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
	require.Error(t, l.Allow(ctx, "10.0.0.1"))

	mr.FastForward(31 * time.Second)

	require.NoError(t, l.Allow(ctx, "10.0.0.1"))
}

func TestCacheFailureFailsClosedWithoutDetail(t *testing.T) {
	l, mr := newTestLimiter(t, Config{})
	mr.Close()

	err := l.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrTooManyRequestsTryAgain))
}

func TestConfigDefaults(t *testing.T) {
	l, _ := newTestLimiter(t, Config{})
	assert.Equal(t, 30*time.Second, l.config.Window)
	assert.Equal(t, int64(20), l.config.Ceiling)
}
