package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(ctx context.Context, h http.Handler, remote, path string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter(t *testing.T) {
	bg := context.Background()

	t.Run("disabled passes everything", func(t *testing.T) {
		rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
		h := rl.LimitByIP(ok)
		for i := 0; i < 20; i++ {
			assert.Equal(t, http.StatusOK, hit(bg, h, "10.0.0.1:1", "/x"))
		}
	})

	t.Run("ip limit is enforced", func(t *testing.T) {
		rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}, zap.NewNop())
		h := rl.LimitByIP(ok)
		assert.Equal(t, http.StatusOK, hit(bg, h, "10.0.0.2:1", "/x"))
		assert.Equal(t, http.StatusOK, hit(bg, h, "10.0.0.2:1", "/x"))
		assert.Equal(t, http.StatusTooManyRequests, hit(bg, h, "10.0.0.2:1", "/x"))
		assert.Equal(t, http.StatusOK, hit(bg, h, "10.0.0.3:1", "/x"))
	})

	t.Run("whitelisted ip and path prefix", func(t *testing.T) {
		rl := middleware.NewRateLimiter(&config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 1,
			WhitelistIPs:      []string{"127.0.0.1"},
			WhitelistPaths:    []string{"/health", "/swagger/*"},
		}, zap.NewNop())
		h := rl.LimitByIP(ok)
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, hit(bg, h, "127.0.0.1:1", "/api/v1/tasks"))
			assert.Equal(t, http.StatusOK, hit(bg, h, "10.0.0.4:1", "/health"))
			assert.Equal(t, http.StatusOK, hit(bg, h, "10.0.0.4:1", "/swagger/index.html"))
		}
	})

	t.Run("users are limited independently", func(t *testing.T) {
		rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinuteAuth: 1}, zap.NewNop())
		h := rl.LimitByUser(ok)
		alice := auth.WithUserContext(bg, &auth.UserContext{UserID: 1, Role: domain.RoleDesigner})
		bob := auth.WithUserContext(bg, &auth.UserContext{UserID: 2, Role: domain.RoleDesigner})
		assert.Equal(t, http.StatusOK, hit(alice, h, "10.0.0.5:1", "/x"))
		assert.Equal(t, http.StatusTooManyRequests, hit(alice, h, "10.0.0.5:1", "/x"))
		assert.Equal(t, http.StatusOK, hit(bob, h, "10.0.0.5:1", "/x"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := middleware.SecurityHeaders(&config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            3600,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
	})(ok)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "max-age=3600; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestCORS(t *testing.T) {
	preflight := func(h http.Handler, origin string) string {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Header().Get("Access-Control-Allow-Origin")
	}
	base := config.CORSConfig{AllowedMethods: []string{"GET", "POST"}}

	explicit := base
	explicit.AllowedOrigins = []string{"https://admin.example.com"}
	h := middleware.CORS(&explicit, "production", zap.NewNop())(ok)
	assert.Equal(t, "https://admin.example.com", preflight(h, "https://admin.example.com"))
	assert.Empty(t, preflight(h, "https://evil.example.com"))

	h = middleware.CORS(&base, "production", zap.NewNop())(ok)
	assert.Empty(t, preflight(h, "https://admin.example.com"))

	h = middleware.CORS(&base, "development", zap.NewNop())(ok)
	assert.Equal(t, "http://localhost:3000", preflight(h, "http://localhost:3000"))
}

func TestLogging_RequestID(t *testing.T) {
	h := middleware.Logging(zap.NewNop())(ok)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}
