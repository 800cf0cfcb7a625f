package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidRole  = errors.New("token carries an unknown role")
	ErrNoSecret     = errors.New("jwt secret is not configured")
)

// Claims are the registered claims plus the identity fields the API needs
type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator issues and validates HS256 tokens signed with a shared secret
type JWTValidator struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	now      func() time.Time
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		tokenTTL: cfg.TokenTTLDuration(),
		now:      time.Now,
	}
}

// IssueToken signs a token for the user. It backs the opsctl token command.
func (v *JWTValidator) IssueToken(user *UserContext) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	if !domain.IsValidRole(string(user.Role)) {
		return "", ErrInvalidRole
	}

	now := v.now()
	claims := Claims{
		Name:  user.DisplayName,
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.IDString(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}
	if !domain.IsValidRole(claims.Role) {
		return nil, ErrInvalidRole
	}

	return &UserContext{
		UserID:      uint(userID),
		DisplayName: claims.Name,
		Email:       claims.Email,
		Role:        domain.Role(claims.Role),
	}, nil
}
