package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/epic-events/crm-api/internal/auth"
	"github.com/epic-events/crm-api/internal/config"
	"github.com/epic-events/crm-api/internal/http/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func createRateLimiter(enabled bool, perMinute int, whitelist ...string) *middleware.RateLimiter {
	return middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           enabled,
		RequestsPerMinute: perMinute,
		WhitelistPaths:    whitelist,
	}, zap.NewNop())
}

func TestRateLimiterDisabledPassesThrough(t *testing.T) {
	rl := createRateLimiter(false, 1)
	handler := rl.Limit(okHandler())

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterBlocksAboveLimit(t *testing.T) {
	rl := createRateLimiter(true, 3)
	handler := rl.Limit(okHandler())

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)
}

func TestRateLimiterKeysByUser(t *testing.T) {
	rl := createRateLimiter(true, 2)
	handler := rl.Limit(okHandler())

	send := func(userID uuid.UUID) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		ctx := auth.WithUserContext(req.Context(), &auth.UserContext{UserID: userID})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req.WithContext(ctx))
		return w.Code
	}

	first := uuid.New()
	second := uuid.New()

	assert.Equal(t, http.StatusOK, send(first))
	assert.Equal(t, http.StatusOK, send(first))
	assert.Equal(t, http.StatusTooManyRequests, send(first))

	// A different principal from the same address has its own counter
	assert.Equal(t, http.StatusOK, send(second))
}

func TestRateLimiterWhitelistedPaths(t *testing.T) {
	rl := createRateLimiter(true, 1, "/health", "/swagger/*")
	handler := rl.Limit(okHandler())

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send("/health"))
		assert.Equal(t, http.StatusOK, send("/swagger/index.html"))
	}

	assert.Equal(t, http.StatusOK, send("/api/v1/client"))
	assert.Equal(t, http.StatusTooManyRequests, send("/api/v1/client"))
}

func TestRateLimiterExceededResponseShape(t *testing.T) {
	rl := createRateLimiter(true, 1)
	handler := rl.Limit(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/client", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}
