package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// limiter decides whether one more request for key fits in its budget.
type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

/* ─── In-process limiter ─────────────────────────────────────────────── */

// maxTrackedKeys caps the per-key map; past it the map is reset.
const maxTrackedKeys = 10000

// memoryLimiter keeps one token bucket per key. Used when no Redis is configured.
type memoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

// newMemoryLimiter allows perMinute requests per key per minute, with bursts
// up to perMinute.
func newMemoryLimiter(perMinute int) *memoryLimiter {
	return &memoryLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxTrackedKeys {
			l.buckets = make(map[string]*rate.Limiter)
		}
		b = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = b
	}
	return b.Allow(), nil
}

/* ─── Redis limiter ──────────────────────────────────────────────────── */

// redisLimiter is a fixed-window counter shared by every API instance.
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowStart := time.Now().Truncate(l.window)
	k := fmt.Sprintf("%s:%s:%d", l.prefix, key, windowStart.Unix())

	// INCR and EXPIRE in one round trip
	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return int(incr.Val()) <= l.limit, nil
}

// newRedisClient connects to redisURL and pings it.
func newRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// newLimiter picks the Redis limiter when REDIS_URL is set and reachable,
// otherwise the in-process one.
func newLimiter(cfg config) limiter {
	if cfg.RedisURL != "" {
		client, err := newRedisClient(cfg.RedisURL)
		if err == nil {
			log.Printf("[newLimiter] using redis rate limiter")
			return &redisLimiter{client: client, limit: cfg.AuthRatePerMin, window: time.Minute, prefix: "ratelimit:auth"}
		}
		log.Printf("[newLimiter] redis unavailable, falling back to in-process limiter: %v", err)
	}
	return newMemoryLimiter(cfg.AuthRatePerMin)
}

/* ─── Middleware ─────────────────────────────────────────────────────── */

// rateLimitMiddleware rejects requests over budget with 429, keyed by client IP.
// A limiter error lets the request through rather than locking users out.
func rateLimitMiddleware(l limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[rateLimitMiddleware] limiter error: %v", err)
			c.Next()
			return
		}
		if !allowed {
			apiError(c, http.StatusTooManyRequests, "too many requests, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
