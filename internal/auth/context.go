package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uint
	DisplayName string
	Email       string
	Role        domain.Role
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasPermission checks the user's role against the default policy
func (u *UserContext) HasPermission(permission domain.Permission) bool {
	return policy.Default().IsAllowed(u.Role, permission)
}

// IsManager reports whether the user holds the manager role
func (u *UserContext) IsManager() bool {
	return u.Role == domain.RoleManager
}

// IDString returns the user ID formatted for log fields and JWT subjects
func (u *UserContext) IDString() string {
	return strconv.FormatUint(uint64(u.UserID), 10)
}

// GetDisplayNameInitials returns initials from the display name (e.g., "John Doe" -> "JD")
func (u *UserContext) GetDisplayNameInitials() string {
	if u.DisplayName == "" {
		return ""
	}
	parts := strings.Fields(u.DisplayName)
	initials := ""
	for _, part := range parts {
		if len(part) > 0 {
			initials += strings.ToUpper(string(part[0]))
		}
	}
	return initials
}
