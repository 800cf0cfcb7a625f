package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/opsdesk/admin-api/internal/config"
	"go.uber.org/zap"
)

// CORS returns a CORS middleware configured from the application config.
// A "*" origin or an empty list in development allows any origin; an empty
// list elsewhere denies all cross-origin requests.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	development := environment == "development" || environment == "local" || environment == ""

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !development {
			logger.Warn("CORS allows any origin outside development", zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", cfg.AllowedOrigins))
	case development:
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS allows any origin in development")
	default:
		// an empty AllowedOrigins would mean "*" to go-chi/cors
		options.AllowOriginFunc = func(*http.Request, string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests are denied", zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func anyOrigin(_ *http.Request, origin string) bool {
	return origin != ""
}
