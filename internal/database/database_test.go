package database_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/database"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenInMemory(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	require.NoError(t, database.HealthCheck(db))

	stats, err := database.HealthCheckWithStats(db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	for _, model := range []any{&domain.User{}, &domain.Task{}, &domain.Invoice{}, &domain.Content{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:      "sqlite",
		SQLitePath:  filepath.Join(t.TempDir(), "admin.db"),
		AutoMigrate: true,
	}

	db, err := database.NewDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&domain.Employee{}))
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown command", func(t *testing.T) {
		err := database.Migrate(ctx, &config.DatabaseConfig{Driver: "postgres"}, "redo-all")
		assert.ErrorContains(t, err, "unknown command")
	})

	t.Run("sqlite uses auto-migrate", func(t *testing.T) {
		err := database.Migrate(ctx, &config.DatabaseConfig{Driver: "sqlite"}, "up")
		assert.ErrorIs(t, err, database.ErrUnsupportedMigrationDriver)
	})

	t.Run("create requires a name", func(t *testing.T) {
		err := database.Migrate(ctx, &config.DatabaseConfig{Driver: "postgres"}, "create")
		assert.Error(t, err)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(migrations.FS, files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "-- +goose Down")
	assert.Contains(t, string(body), "CREATE TABLE invoice_items")
}
