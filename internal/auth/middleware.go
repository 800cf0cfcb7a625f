package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/domain"
	applog "github.com/opsdesk/admin-api/internal/logger"
	"github.com/opsdesk/admin-api/internal/policy"
	"go.uber.org/zap"
)

// UserResolver loads the current account behind a validated token subject
type UserResolver interface {
	Resolve(ctx context.Context, id uint) (*UserContext, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	policy       *policy.Engine
	resolver     UserResolver
	apiKey       string
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, engine *policy.Engine, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(cfg),
		policy:       engine,
		apiKey:       cfg.APIKey,
		logger:       logger,
	}
}

// WithResolver makes bearer requests act with the stored account's current
// role, rejecting tokens of deleted or inactive users
func (m *Middleware) WithResolver(resolver UserResolver) *Middleware {
	m.resolver = resolver
	return m
}

// systemUser is the identity attached to API key requests
func systemUser() *UserContext {
	return &UserContext{
		DisplayName: "System",
		Email:       "system@opsdesk.local",
		Role:        domain.RoleManager,
	}
}

// Authenticate is the main authentication middleware
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Try API key first
		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if !m.validateAPIKey(apiKey) {
				m.logger.Warn("invalid API key attempt",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userCtx := systemUser()
			m.logger.Info("request authenticated",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("auth_type", "api_key"),
				zap.String("user_email", userCtx.Email),
				zap.Duration("auth_duration", time.Since(start)),
			)
			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		if m.resolver != nil {
			resolved, err := m.resolver.Resolve(r.Context(), userCtx.UserID)
			if err != nil {
				m.logger.Warn("token subject rejected",
					zap.String("user_id", userCtx.IDString()),
					zap.Error(err),
				)
				http.Error(w, "Unauthorized: unknown or inactive user", http.StatusUnauthorized)
				return
			}
			userCtx = resolved
		}

		applog.WithUser(m.logger, userCtx.UserID, string(userCtx.Role)).Info("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequirePermission middleware ensures the user's role holds the permission
func (m *Middleware) RequirePermission(permission domain.Permission) func(http.Handler) http.Handler {
	return m.RequireAnyPermission(permission)
}

// RequireAnyPermission middleware ensures the user's role holds at least one of the permissions
func (m *Middleware) RequireAnyPermission(permissions ...domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no user context", http.StatusForbidden)
				return
			}

			if !m.policy.IsAllowedAny(userCtx.Role, permissions...) {
				m.logger.Debug("permission denied",
					zap.String("path", r.URL.Path),
					zap.String("role", string(userCtx.Role)),
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
