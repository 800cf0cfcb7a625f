package logger

import (
	"fmt"

	"github.com/opsdesk/admin-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger. JSON output is used when asked
// for or in production; everything else gets the colored console encoder.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Set log level
	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	// Internal zap errors stay on stderr
	if cfg.Output != "" {
		zapCfg.OutputPaths = []string{cfg.Output}
	}

	// Add initial fields
	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// ParseLevel reads a level name, falling back to info
func ParseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithUser adds the acting user to logger
func WithUser(logger *zap.Logger, userID uint, role string) *zap.Logger {
	return logger.With(
		zap.Uint("user_id", userID),
		zap.String("role", role),
	)
}

// WithJob tags a background job run
func WithJob(logger *zap.Logger, jobName string) *zap.Logger {
	return logger.With(zap.String("job_name", jobName))
}
