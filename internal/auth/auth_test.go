package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: "test-secret",
		Issuer:    "opsdesk",
		TokenTTL:  60,
		APIKey:    "service-key",
	}
}

func designer() *UserContext {
	return &UserContext{UserID: 7, DisplayName: "Dana Designer", Email: "dana@example.com", Role: domain.RoleDesigner}
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := NewJWTValidator(testAuthConfig())

	token, err := v.IssueToken(designer())
	require.NoError(t, err)

	user, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, designer(), user)
}

func TestJWTValidator_Rejections(t *testing.T) {
	v := NewJWTValidator(testAuthConfig())
	token, err := v.IssueToken(designer())
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewJWTValidator(testAuthConfig())
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.JWTSecret = "other"
		_, err := NewJWTValidator(cfg).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		cfg := testAuthConfig()
		cfg.Issuer = "someone-else"
		_, err := NewJWTValidator(cfg).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no secret", func(t *testing.T) {
		_, err := NewJWTValidator(&config.AuthConfig{}).ValidateToken(token)
		assert.ErrorIs(t, err, ErrNoSecret)
	})

	t.Run("unknown role cannot be issued", func(t *testing.T) {
		_, err := v.IssueToken(&UserContext{UserID: 1, Role: "admin"})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

type stubResolver struct {
	user *UserContext
	err  error
}

func (s stubResolver) Resolve(ctx context.Context, id uint) (*UserContext, error) {
	return s.user, s.err
}

// echoUser writes the authenticated role so tests can see the identity that reached the handler
func echoUser(w http.ResponseWriter, r *http.Request) {
	user, ok := FromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(user.Role))
}

func TestMiddleware_Authenticate(t *testing.T) {
	cfg := testAuthConfig()
	token, err := NewJWTValidator(cfg).IssueToken(designer())
	require.NoError(t, err)

	newHandler := func(resolver UserResolver) http.Handler {
		m := NewMiddleware(cfg, policy.Default(), zap.NewNop())
		if resolver != nil {
			m = m.WithResolver(resolver)
		}
		return m.Authenticate(http.HandlerFunc(echoUser))
	}

	tests := []struct {
		name     string
		headers  map[string]string
		resolver UserResolver
		status   int
		body     string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "malformed header", headers: map[string]string{"Authorization": "Token abc"}, status: http.StatusUnauthorized},
		{name: "valid bearer", headers: map[string]string{"Authorization": "Bearer " + token}, status: http.StatusOK, body: "designer"},
		{name: "lowercase scheme", headers: map[string]string{"Authorization": "bearer " + token}, status: http.StatusOK, body: "designer"},
		{name: "api key acts as manager", headers: map[string]string{"X-API-Key": "service-key"}, status: http.StatusOK, body: "manager"},
		{name: "wrong api key", headers: map[string]string{"X-API-Key": "nope"}, status: http.StatusUnauthorized},
		{
			name:     "resolver applies current role",
			headers:  map[string]string{"Authorization": "Bearer " + token},
			resolver: stubResolver{user: &UserContext{UserID: 7, Role: domain.RoleHR}},
			status:   http.StatusOK,
			body:     "hr",
		},
		{
			name:     "resolver rejects inactive user",
			headers:  map[string]string{"Authorization": "Bearer " + token},
			resolver: stubResolver{err: errors.New("inactive")},
			status:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			newHandler(tt.resolver).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestMiddleware_RequirePermission(t *testing.T) {
	m := NewMiddleware(testAuthConfig(), policy.Default(), zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	serve := func(h http.Handler, user *UserContext) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			req = req.WithContext(WithUserContext(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(m.RequirePermission(domain.PermEditTasks)(ok), designer()))
	assert.Equal(t, http.StatusForbidden, serve(m.RequirePermission(domain.PermViewInvoices)(ok), designer()))
	assert.Equal(t, http.StatusForbidden, serve(m.RequirePermission(domain.PermViewTasks)(ok), nil))
	assert.Equal(t, http.StatusNoContent,
		serve(m.RequireAnyPermission(domain.PermViewInvoices, domain.PermViewProjects)(ok), designer()))
}

func TestUserContext(t *testing.T) {
	user := designer()
	assert.Equal(t, "7", user.IDString())
	assert.Equal(t, "DD", user.GetDisplayNameInitials())
	assert.True(t, user.HasPermission(domain.PermViewTasks))
	assert.False(t, user.IsManager())

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { MustFromContext(context.Background()) })
}
