package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		logging   config.LoggingConfig
		app       config.AppConfig
		wantLevel zapcore.Level
	}{
		{
			name:      "development console",
			logging:   config.LoggingConfig{Level: "debug", Format: "console"},
			app:       config.AppConfig{Name: "test", Environment: "development"},
			wantLevel: zapcore.DebugLevel,
		},
		{
			name:      "production json",
			logging:   config.LoggingConfig{Level: "warn", Format: "json"},
			app:       config.AppConfig{Name: "test", Environment: "production"},
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "invalid level falls back to info",
			logging:   config.LoggingConfig{Level: "loud"},
			app:       config.AppConfig{Name: "test"},
			wantLevel: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(&tt.logging, &tt.app)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.wantLevel))
			assert.False(t, log.Core().Enabled(tt.wantLevel-1))
		})
	}
}

func TestNewLogger_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	log, err := logger.NewLogger(
		&config.LoggingConfig{Level: "info", Format: "json", Output: path},
		&config.AppConfig{Name: "opsdesk", Environment: "staging"},
	)
	require.NoError(t, err)

	log.Info("invoice created", zap.Uint("invoice_id", 7))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry))

	assert.Equal(t, "invoice created", entry["msg"])
	assert.Equal(t, "opsdesk", entry["app"])
	assert.Equal(t, "staging", entry["environment"])
	assert.EqualValues(t, 7, entry["invoice_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	logger.WithUser(base, 42, "designer").Info("task started")
	logger.WithRequest(base, "POST", "/api/v1/tasks/1/start", "req-1").Info("request")
	logger.WithJob(base, "overdue_report").Info("scheduled job completed")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, map[string]interface{}{"user_id": uint64(42), "role": "designer"}, entries[0].ContextMap())
	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "overdue_report", entries[2].ContextMap()["job_name"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, logger.ParseLevel(""))
}
