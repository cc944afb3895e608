package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// loginRateLimitPrefix is the Redis key prefix for login attempts.
	loginRateLimitPrefix = "ratelimit:login:"
	// loginRateLimitWindow is the fixed window for counting attempts.
	loginRateLimitWindow = time.Minute
)

// loginWindowScript counts an attempt in the current window atomically
// and returns the updated count plus the window TTL in seconds.
var loginWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIRE', key, window)
	end
	local ttl = redis.call('TTL', key)

	return {count, ttl}
`)

// LoginRateLimitResult contains the result of a login rate limit check.
type LoginRateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// CheckLoginRateLimit counts a login attempt for the given client IP
// and reports whether it is within the per-minute budget.
func (c *Cache) CheckLoginRateLimit(ctx context.Context, ip string, perMinute int) (*LoginRateLimitResult, error) {
	if perMinute <= 0 {
		return &LoginRateLimitResult{Allowed: true}, nil
	}

	key := loginRateLimitPrefix + ip
	windowSecs := int(loginRateLimitWindow.Seconds())

	result, err := loginWindowScript.Run(ctx, c.client, []string{key}, windowSecs).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("login rate limit check: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("login rate limit check: unexpected script result %v", result)
	}

	count, ttl := result[0], result[1]
	if count > int64(perMinute) {
		return &LoginRateLimitResult{
			Allowed:    false,
			RetryAfter: time.Duration(ttl) * time.Second,
		}, nil
	}

	return &LoginRateLimitResult{Allowed: true}, nil
}
