package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMemoryLimiter_BurstThenReject(t *testing.T) {
	l := newMemoryLimiter(3)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d: expected allowed, got ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Error("expected 4th request to be rejected")
	}
	// Other keys have their own bucket.
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("expected a different key to be allowed")
	}
}

func TestMemoryLimiter_ResetsPastKeyCap(t *testing.T) {
	l := newMemoryLimiter(1)
	ctx := context.Background()
	for i := 0; i < maxTrackedKeys; i++ {
		l.Allow(ctx, strconv.Itoa(i))
	}
	if len(l.buckets) != maxTrackedKeys {
		t.Fatalf("expected %d buckets, got %d", maxTrackedKeys, len(l.buckets))
	}
	l.Allow(ctx, "one more")
	if len(l.buckets) != 1 {
		t.Errorf("expected map reset to 1 bucket, got %d", len(l.buckets))
	}
}

func TestNewLimiter_FallsBackWithoutRedis(t *testing.T) {
	if _, ok := newLimiter(config{AuthRatePerMin: 5}).(*memoryLimiter); !ok {
		t.Error("expected in-process limiter when REDIS_URL is empty")
	}
	cfg := config{AuthRatePerMin: 5, RedisURL: "redis://127.0.0.1:1/0"}
	if _, ok := newLimiter(cfg).(*memoryLimiter); !ok {
		t.Error("expected in-process limiter when redis is unreachable")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	if _, err := newRedisClient("not-a-url"); err == nil {
		t.Error("expected parse error")
	}
}

// stubLimiter returns fixed answers.
type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allowed, s.err }

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		l      limiter
		status int
	}{
		{"allowed", stubLimiter{allowed: true}, http.StatusOK},
		{"rejected", stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter error passes through", stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/api/login", rateLimitMiddleware(tt.l), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/api/login", nil))
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestRateLimitMiddleware_WithMemoryLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/login", rateLimitMiddleware(newMemoryLimiter(2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/login", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 200, 200, 429; got %v", codes)
	}
}
