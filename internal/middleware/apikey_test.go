package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/config"
	"github.com/stretchr/testify/assert"
)

func newGuardForTest(limit int) *APIKeyGuard {
	cfg := &config.Config{}
	cfg.Consumer.APIKey = "secret-key-123"
	cfg.Consumer.RateLimitPerMinute = limit
	return NewAPIKeyGuard(cfg)
}

func newTestRouter(guard *APIKeyGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(guard.Middleware())
	r.GET("/protected", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(router *gin.Engine, key string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	router.ServeHTTP(w, req)
	return w.Code
}

func TestAPIKeyGuardAuthentication(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantCode int
	}{
		{"valid key", "secret-key-123", http.StatusOK},
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key same length", "secret-key-456", http.StatusUnauthorized},
		{"wrong key different length", "nope", http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := newTestRouter(newGuardForTest(100))
			assert.Equal(t, test.wantCode, doRequest(router, test.key))
		})
	}
}

func TestAPIKeyGuardRejectsWhenNoKeyConfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Consumer.RateLimitPerMinute = 100
	router := newTestRouter(NewAPIKeyGuard(cfg))

	// An empty configured key must never match an empty presented key.
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, ""))
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "anything"))
}

func TestAPIKeyGuardRateLimit(t *testing.T) {
	guard := newGuardForTest(3)
	router := newTestRouter(guard)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "secret-key-123"), "request %d within budget", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "secret-key-123"))
}

func TestAPIKeyGuardRateLimitWindowResets(t *testing.T) {
	guard := newGuardForTest(2)
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return current }
	router := newTestRouter(guard)

	assert.Equal(t, http.StatusOK, doRequest(router, "secret-key-123"))
	assert.Equal(t, http.StatusOK, doRequest(router, "secret-key-123"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "secret-key-123"))

	// The budget refills once the window deadline passes.
	current = current.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, doRequest(router, "secret-key-123"))
}

func TestAPIKeyGuardUnauthorizedDoesNotConsumeBudget(t *testing.T) {
	guard := newGuardForTest(1)
	router := newTestRouter(guard)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "wrong-key-00000"))
	}
	assert.Equal(t, http.StatusOK, doRequest(router, "secret-key-123"))
}
