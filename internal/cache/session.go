package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opmeter/opmeter/internal/model"
)

// sessionPrefix is the Redis key prefix for bearer sessions. Keys are
// token digests, never raw tokens.
const sessionPrefix = "session:"

// SetSession stores a session under the token's cache key with a TTL.
func (c *Cache) SetSession(ctx context.Context, cacheKey string, session *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := c.client.Set(ctx, sessionPrefix+cacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by the token's cache key.
// Returns nil on a miss (unknown or expired token). Redis is the sole
// store for sessions, so infrastructure errors are returned rather
// than treated as misses.
func (c *Cache) GetSession(ctx context.Context, cacheKey string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionPrefix+cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &session, nil
}

// DeleteSession revokes a session.
func (c *Cache) DeleteSession(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, sessionPrefix+cacheKey).Err()
}
