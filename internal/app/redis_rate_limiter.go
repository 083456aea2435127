/**
 * @description
 * Distributed throttling for login attempts, backed by Redis. The limiter
 * owns the whole decision: callers ask Allow and get back a verdict plus the
 * wait time, never a raw counter. Denied attempts do not consume window
 * budget, so a guessing run cannot push the window's reset further out for
 * the legitimate account owner.
 */
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the limiter's verdict on a single attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// allowScript admits the attempt only while the window still has budget.
// Returns {1, ttl_ms} when admitted and {0, ttl_ms} when the window is full.
var allowScript = redis.NewScript(`
local limit = tonumber(ARGV[2])
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= limit then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl < 0 then
    ttl = tonumber(ARGV[1])
  end
  return {0, ttl}
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {1, ttl}
`)

// RedisRateLimiter is a fixed-window limiter shared between instances, so
// spreading login attempts across replicas cannot dodge the limit. The
// limit and window are fixed at construction.
type RedisRateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter namespaced under prefix that admits
// limit attempts per subject within each window.
func NewRedisRateLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "banker:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")
	if window <= 0 {
		window = time.Minute
	}

	return &RedisRateLimiter{client: client, prefix: trimmedPrefix, limit: limit, window: window}
}

// Allow decides whether one attempt for scope/subject may proceed. A nil
// client, non-positive limit or blank subject admits everything.
func (r *RedisRateLimiter) Allow(ctx context.Context, scope, subject string) (Decision, error) {
	if r == nil || r.client == nil || r.limit <= 0 {
		return Decision{Allowed: true}, nil
	}

	normalizedScope := strings.TrimSpace(scope)
	normalizedSubject := strings.TrimSpace(subject)
	if normalizedScope == "" || normalizedSubject == "" {
		return Decision{Allowed: true}, nil
	}

	windowMs := r.window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, normalizedScope, normalizedSubject)
	reply, err := allowScript.Run(ctx, r.client, []string{key}, windowMs, r.limit).Result()
	if err != nil {
		return Decision{}, err
	}
	return parseAllowReply(reply, windowMs)
}

// parseAllowReply converts the script's {allowed, ttl_ms} pair into a
// Decision. The ttl rounds up to whole seconds so clients never retry
// inside the same window.
func parseAllowReply(reply interface{}, windowMs int64) (Decision, error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("unexpected limiter reply shape: %T", reply)
	}
	allowed, ok := values[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected limiter verdict type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected limiter ttl type: %T", values[1])
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}

	retryAfter := time.Duration((ttlMs+999)/1000) * time.Second
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return Decision{Allowed: allowed == 1, RetryAfter: retryAfter}, nil
}
