/**
 * @description
 * Idempotency middleware for the transfer endpoint. Clients may send an
 * Idempotency-Key header; a replayed key returns the cached response instead
 * of executing a second transfer. A short-lived distributed lock rejects the
 * same key arriving concurrently. The storage behind the cache is abstracted
 * behind a small interface so the middleware does not depend on a live Redis.
 */
package api

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader   = "Idempotency-Key"
	idempotencyCacheTTL = 24 * time.Hour
	idempotencyLockTTL  = 10 * time.Second
	idempotencyPrefix   = "banker:idempotency:"
	idempotencyLockPfx  = "banker:idempotency_lock:"
)

// idempotencyStore is the minimal key-value contract the middleware needs.
type idempotencyStore interface {
	// Get returns the cached value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// redisIdempotencyStore adapts a redis client to idempotencyStore.
type redisIdempotencyStore struct {
	client *redis.Client
}

func (s *redisIdempotencyStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *redisIdempotencyStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *redisIdempotencyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisIdempotencyStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// responseRecorder captures the status and body so a successful response can
// be cached for replay.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency returns middleware that replays cached responses for repeated
// Idempotency-Key values. Requests without the header pass through, as does
// everything when rdb is nil.
func Idempotency(rdb *redis.Client) func(http.Handler) http.Handler {
	if rdb == nil {
		return idempotencyMiddleware(nil)
	}
	return idempotencyMiddleware(&redisIdempotencyStore{client: rdb})
}

func idempotencyMiddleware(store idempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cacheKey := idempotencyPrefix + key
			lockKey := idempotencyLockPfx + key

			cached, hit, err := store.Get(ctx, cacheKey)
			if err != nil {
				// A flaky cache should not block the request itself.
				log.Printf("level=warn component=api middleware=idempotency msg=\"cache lookup failed\" err=%v", err)
			}
			if hit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.Write([]byte(cached))
				return
			}

			acquired, err := store.SetNX(ctx, lockKey, "processing", idempotencyLockTTL)
			if err != nil {
				log.Printf("level=error component=api middleware=idempotency msg=\"lock acquisition failed\" err=%v", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !acquired {
				writeError(w, http.StatusConflict, "A request with this idempotency key is currently being processed")
				return
			}
			defer func() {
				if err := store.Del(ctx, lockKey); err != nil {
					log.Printf("level=warn component=api middleware=idempotency msg=\"lock release failed\" err=%v", err)
				}
			}()

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			// Only successful outcomes are safe to replay.
			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				if err := store.Set(ctx, cacheKey, recorder.body.String(), idempotencyCacheTTL); err != nil {
					log.Printf("level=warn component=api middleware=idempotency msg=\"response cache failed\" err=%v", err)
				}
			}
		})
	}
}
