// Package cache wraps the Redis client for the two volatile namespaces the
// subsystem owns: session mirrors and rate counters. The cache is a
// disposable accelerant — a miss here never means "revoked" on its own; the
// durable store stays authoritative.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse-io/gatehouse/internal/models"
)

// ErrCacheUnavailable wraps every transport failure so Redis detail never
// leaks past this package.
var ErrCacheUnavailable = errors.New("cache unavailable")

// ErrSessionMiss is returned when no mirror exists for the identifier.
var ErrSessionMiss = errors.New("session not cached")

const (
	// SessionPrefix namespaces refresh-token mirrors.
	SessionPrefix = "session:"
	// RatePrefix namespaces per-address request counters.
	RatePrefix = "ratelimit:"
)

// SessionStore mirrors refresh-token metadata in Redis for fast existence
// checks during Refresh.
type SessionStore struct {
	redis redis.UniversalClient
}

// NewSessionStore binds a SessionStore to the given Redis client.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{redis: client}
}

func sessionKey(refreshTokenID string) string {
	return SessionPrefix + refreshTokenID
}

// Save writes the JSON mirror for a refresh token with the token's TTL.
func (s *SessionStore) Save(ctx context.Context, refreshTokenID string, sess models.CachedSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, sessionKey(refreshTokenID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Get returns the mirror for a refresh token, ErrSessionMiss when absent.
func (s *SessionStore) Get(ctx context.Context, refreshTokenID string) (*models.CachedSession, error) {
	data, err := s.redis.Get(ctx, sessionKey(refreshTokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionMiss
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	sess := &models.CachedSession{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Delete removes the mirror; deleting an absent key is not an error.
func (s *SessionStore) Delete(ctx context.Context, refreshTokenID string) error {
	if err := s.redis.Del(ctx, sessionKey(refreshTokenID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// DeleteByPrefix removes every key under the given namespace. Admin-only
// O(n) operation; never called on request hot paths.
func (s *SessionStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping reports point-in-time Redis availability.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
