package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/config"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/rs/zerolog/log"
)

const apiKeyHeader = "x-api-key"

type rateWindow struct {
	count   int
	resetAt time.Time
}

// APIKeyGuard authenticates export-API requests against a shared secret and
// enforces a sliding per-key request budget. State is held on the guard
// itself with an injectable clock rather than in package-level globals, so
// tests control time and nothing leaks across instances.
type APIKeyGuard struct {
	key    string
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewAPIKeyGuard(cfg *config.Config) *APIKeyGuard {
	return &APIKeyGuard{
		key:     cfg.Consumer.APIKey,
		limit:   cfg.Consumer.RateLimitPerMinute,
		window:  time.Minute,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
}

// matches compares the presented key in constant time. A length mismatch
// short-circuits before the comparison.
func (g *APIKeyGuard) matches(presented string) bool {
	if g.key == "" || presented == "" {
		return false
	}
	if len(presented) != len(g.key) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(g.key)) == 1
}

// allow consumes one unit of the per-key budget, resetting the window when
// its deadline has passed.
func (g *APIKeyGuard) allow(key string) bool {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	w, ok := g.windows[key]
	if !ok || w.resetAt.Before(now) {
		g.windows[key] = &rateWindow{count: 1, resetAt: now.Add(g.window)}
		return true
	}
	w.count++
	return w.count <= g.limit
}

// Middleware rejects requests without a matching x-api-key (401) or over
// budget (429). Security-relevant outcomes are logged as audit records.
func (g *APIKeyGuard) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		presented := ctx.GetHeader(apiKeyHeader)

		if !g.matches(presented) {
			log.Warn().
				Str("tag", "AUDIT").
				Str("path", ctx.Request.URL.Path).
				Str("method", ctx.Request.Method).
				Msg("Export API authentication failed")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid or missing API key"})
			return
		}

		if !g.allow(presented) {
			log.Warn().
				Str("tag", "AUDIT").
				Str("path", ctx.Request.URL.Path).
				Msg("Export API rate limit exceeded")
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Message: "Rate limit exceeded"})
			return
		}

		ctx.Next()
	}
}
