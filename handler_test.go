package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupTestRouter registers handler at method+path behind a stub that sets
// user_id, skipping auth. The Handler has no DB pool, so only requests that
// are rejected before any query can be exercised.
func setupTestRouter(method, path string, handler func(*Handler, *gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{}
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, func(c *gin.Context) { handler(h, c) })
	return router
}

// doRequest sends a request with an optional JSON body to router.
func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// expectError fails the test unless w has the given status and an
// {"error": ...} body containing substr.
func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, substr string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"error"`) || !strings.Contains(w.Body.String(), substr) {
		t.Errorf("expected error containing %q, got %s", substr, w.Body.String())
	}
}

func ptr[T any](v T) *T { return &v }

func TestNewDBPool_BadURL(t *testing.T) {
	if _, err := newDBPool(context.Background(), "postgres://user@localhost:notaport/db"); err == nil {
		t.Error("expected error for an unparsable DB_URL")
	}
}
