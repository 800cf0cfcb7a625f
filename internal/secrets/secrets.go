// Package secrets fills credentials that are not in the environment from a secret store
package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/opsdesk/admin-api/internal/config"
	"go.uber.org/zap"
)

// Fetcher returns a secret value by name
type Fetcher interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Env reads secrets from environment variables named like the secret
type Env struct{}

func (Env) GetSecret(ctx context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("environment variable %q not set", name)
	}
	return value, nil
}

// Cached memoizes another fetcher's values for ttl
type Cached struct {
	next Fetcher
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

func NewCached(next Fetcher, ttl time.Duration) *Cached {
	return &Cached{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedSecret),
	}
}

func (c *Cached) GetSecret(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[name]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := c.next.GetSecret(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[name] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// NewFetcher builds the fetcher for the configured source
func NewFetcher(cfg *config.Config, logger *zap.Logger) (Fetcher, error) {
	switch source := cfg.Secrets.ResolveSource(cfg.App.Environment); source {
	case config.SecretSourceEnvironment:
		return Env{}, nil
	case config.SecretSourceVault:
		vault, err := NewKeyVault(cfg.Secrets.VaultName, logger)
		if err != nil {
			return nil, err
		}
		return NewCached(vault, cfg.Secrets.CacheTTLDuration()), nil
	default:
		return nil, fmt.Errorf("unknown secret source %q", source)
	}
}

// Apply fills empty credentials in cfg from the fetcher. A credential that
// is already configured is never overwritten.
func Apply(ctx context.Context, cfg *config.Config, fetcher Fetcher, logger *zap.Logger) error {
	targets := []struct {
		name  string
		value *string
	}{
		{cfg.Secrets.JWTSecretName, &cfg.Auth.JWTSecret},
		{cfg.Secrets.APIKeyName, &cfg.Auth.APIKey},
		{cfg.Secrets.DatabasePasswordName, &cfg.Database.Password},
	}

	for _, target := range targets {
		if target.name == "" || *target.value != "" {
			continue
		}
		value, err := fetcher.GetSecret(ctx, target.name)
		if err != nil {
			logger.Debug("secret not available", zap.String("secret_name", target.name), zap.Error(err))
			continue
		}
		*target.value = value
		logger.Info("credential loaded from secret store", zap.String("secret_name", target.name))
	}

	if cfg.App.Environment == "production" && cfg.Auth.JWTSecret == "" && cfg.Auth.APIKey == "" {
		return fmt.Errorf("no jwt secret or api key available from config or secret store")
	}
	return nil
}
