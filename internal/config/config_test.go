package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTLDuration())
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
	assert.Equal(t, time.Minute, cfg.Server.RequestTimeoutDuration())
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, "0 0 7 * * *", cfg.Jobs.OverdueReportSchedule)
	assert.Equal(t, 5*time.Minute, cfg.Jobs.TimeoutDuration())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ADMIN_API_KEY", "key-from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "key-from-env", cfg.Auth.APIKey)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mssql")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Environment: "production"},
			Database: DatabaseConfig{Driver: "postgres"},
			Auth:     AuthConfig{JWTSecret: "secret", TokenTTL: 60},
		}
	}

	require.NoError(t, valid().Validate())

	noCredentials := valid()
	noCredentials.Auth.JWTSecret = ""
	assert.Error(t, noCredentials.Validate())

	apiKeyOnly := noCredentials
	apiKeyOnly.Auth.APIKey = "key"
	assert.NoError(t, apiKeyOnly.Validate())

	badTTL := valid()
	badTTL.Auth.TokenTTL = 0
	assert.ErrorContains(t, badTTL.Validate(), "tokenTTL")
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "ops", Password: "pw", Name: "opsdesk", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=ops password=pw dbname=opsdesk sslmode=require", d.ConnectionString())
}

func TestSecretsConfig(t *testing.T) {
	auto := SecretsConfig{Source: SecretSourceAuto}
	assert.Equal(t, SecretSourceEnvironment, auto.ResolveSource("development"))
	assert.Equal(t, SecretSourceVault, auto.ResolveSource("production"))

	unset := SecretsConfig{}
	assert.Equal(t, SecretSourceEnvironment, unset.ResolveSource("production"))

	vaultWithoutName := &Config{
		App:      AppConfig{Environment: "staging"},
		Database: DatabaseConfig{Driver: "postgres"},
		Auth:     AuthConfig{TokenTTL: 60},
		Secrets:  SecretsConfig{Source: SecretSourceAuto},
	}
	assert.ErrorContains(t, vaultWithoutName.Validate(), "vaultName")

	vaultWithoutName.Secrets.VaultName = "opsdesk-kv"
	assert.NoError(t, vaultWithoutName.Validate())

	unknown := &Config{Database: DatabaseConfig{Driver: "sqlite"}, Auth: AuthConfig{TokenTTL: 1}, Secrets: SecretsConfig{Source: "ssm"}}
	assert.ErrorContains(t, unknown.Validate(), "secrets source")
}
