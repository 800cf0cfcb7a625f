package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsdesk/admin-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapFetcher struct {
	values map[string]string
	calls  int
}

func (m *mapFetcher) GetSecret(ctx context.Context, name string) (string, error) {
	m.calls++
	if v, ok := m.values[name]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func secretNames() config.SecretsConfig {
	return config.SecretsConfig{
		JWTSecretName:        "jwt",
		APIKeyName:           "api-key",
		DatabasePasswordName: "db-password",
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("fills empty credentials only", func(t *testing.T) {
		cfg := &config.Config{
			App:      config.AppConfig{Environment: "production"},
			Auth:     config.AuthConfig{APIKey: "already-set"},
			Secrets:  secretNames(),
			Database: config.DatabaseConfig{},
		}
		fetcher := &mapFetcher{values: map[string]string{"jwt": "from-vault", "api-key": "ignored", "db-password": "pw"}}

		require.NoError(t, Apply(ctx, cfg, fetcher, zap.NewNop()))
		assert.Equal(t, "from-vault", cfg.Auth.JWTSecret)
		assert.Equal(t, "already-set", cfg.Auth.APIKey)
		assert.Equal(t, "pw", cfg.Database.Password)
		assert.Equal(t, 2, fetcher.calls)
	})

	t.Run("production without any credential fails", func(t *testing.T) {
		cfg := &config.Config{App: config.AppConfig{Environment: "production"}, Secrets: secretNames()}
		err := Apply(ctx, cfg, &mapFetcher{}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("missing secrets are fine in development", func(t *testing.T) {
		cfg := &config.Config{App: config.AppConfig{Environment: "development"}, Secrets: secretNames()}
		assert.NoError(t, Apply(ctx, cfg, &mapFetcher{}, zap.NewNop()))
	})
}

func TestEnv(t *testing.T) {
	t.Setenv("OPSDESK_TEST_SECRET", "value")

	v, err := Env{}.GetSecret(context.Background(), "OPSDESK_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	_, err = Env{}.GetSecret(context.Background(), "OPSDESK_TEST_SECRET_MISSING")
	assert.Error(t, err)
}

func TestCached(t *testing.T) {
	next := &mapFetcher{values: map[string]string{"jwt": "s1"}}
	cached := NewCached(next, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		v, err := cached.GetSecret(context.Background(), "jwt")
		require.NoError(t, err)
		assert.Equal(t, "s1", v)
	}
	assert.Equal(t, 1, next.calls)

	now = now.Add(2 * time.Minute)
	_, err := cached.GetSecret(context.Background(), "jwt")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	_, err = cached.GetSecret(context.Background(), "missing")
	assert.Error(t, err)
}

func TestNewFetcher_Environment(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Environment: "development"},
		Secrets: config.SecretsConfig{Source: config.SecretSourceAuto},
	}
	fetcher, err := NewFetcher(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Env{}, fetcher)
}
