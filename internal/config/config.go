package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Secrets   SecretsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver selects the gorm dialect: "postgres" or "sqlite"
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	// SQLitePath is the database file used when Driver is "sqlite"
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// AutoMigrate runs gorm AutoMigrate on startup (development only)
	AutoMigrate bool
}

// AuthConfig holds bearer token and API key settings
type AuthConfig struct {
	// JWTSecret signs and verifies HS256 tokens
	JWTSecret string
	Issuer    string
	// TokenTTL is the lifetime of issued tokens in minutes
	TokenTTL int
	// APIKey authenticates service callers as the manager role
	APIKey string
}

// StorageConfig selects where document and content files live: "local" or "azure"
type StorageConfig struct {
	Mode          string
	LocalBasePath string
	// AzureAccountURL is used with DefaultAzureCredential when no connection string is set
	AzureAccountURL       string
	AzureConnectionString string
	AzureContainer        string
}

type LoggingConfig struct {
	Level  string
	Format string
	// Output is "stdout", "stderr" or a file path
	Output string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// JobsConfig controls the background scheduler
type JobsConfig struct {
	Enabled bool
	// OverdueReportSchedule is a cron expression, seconds field optional
	OverdueReportSchedule string
	// Timeout bounds one job run in seconds
	Timeout int
}

const (
	SecretSourceEnvironment = "environment"
	SecretSourceVault       = "vault"
	// SecretSourceAuto uses the environment in development and the vault elsewhere
	SecretSourceAuto = "auto"
)

// SecretsConfig names the secrets that fill empty credentials at startup
type SecretsConfig struct {
	Source               string
	VaultName            string
	JWTSecretName        string
	APIKeyName           string
	DatabasePasswordName string
	// CacheTTL is in seconds
	CacheTTL int
}

// ResolveSource turns the auto source into a concrete one for the environment
func (s *SecretsConfig) ResolveSource(environment string) string {
	switch s.Source {
	case "":
		return SecretSourceEnvironment
	case SecretSourceAuto:
	default:
		return s.Source
	}
	switch environment {
	case "development", "local", "test", "":
		return SecretSourceEnvironment
	default:
		return SecretSourceVault
	}
}

// CacheTTLDuration returns the secret cache lifetime as duration
func (s *SecretsConfig) CacheTTLDuration() time.Duration {
	return time.Duration(s.CacheTTL) * time.Second
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TokenTTLDuration returns the token lifetime as duration
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// TimeoutDuration returns the per-run job timeout as duration
func (j *JobsConfig) TimeoutDuration() time.Duration {
	return time.Duration(j.Timeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Flat env names used by deployments
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = v.GetString("ADMIN_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Secrets.Source {
	case "", SecretSourceEnvironment, SecretSourceVault, SecretSourceAuto:
	default:
		return fmt.Errorf("unsupported secrets source %q", c.Secrets.Source)
	}
	if c.Secrets.ResolveSource(c.App.Environment) == SecretSourceVault && c.Secrets.VaultName == "" {
		return fmt.Errorf("secrets.vaultName is required when secrets come from the vault")
	}
	// vault-backed credentials are checked after they are fetched
	if c.App.Environment == "production" && c.Auth.JWTSecret == "" && c.Auth.APIKey == "" &&
		c.Secrets.ResolveSource(c.App.Environment) == SecretSourceEnvironment {
		return fmt.Errorf("auth.jwtSecret or auth.apiKey is required in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.tokenTTL must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Opsdesk Admin API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "opsdesk")
	v.SetDefault("database.user", "opsdesk")
	v.SetDefault("database.password", "opsdesk")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "opsdesk.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	// Auth defaults
	v.SetDefault("auth.issuer", "opsdesk")
	v.SetDefault("auth.tokenTTL", 720) // 12 hours

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.azureAccountURL", "")
	v.SetDefault("storage.azureConnectionString", "")
	v.SetDefault("storage.azureContainer", "opsdesk-files")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Background jobs
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.overdueReportSchedule", "0 0 7 * * *") // 07:00 UTC daily
	v.SetDefault("jobs.timeout", 300)

	// Secrets: empty credentials are filled from these names
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.vaultName", "")
	v.SetDefault("secrets.jwtSecretName", "opsdesk-jwt-secret")
	v.SetDefault("secrets.apiKeyName", "opsdesk-admin-api-key")
	v.SetDefault("secrets.databasePasswordName", "opsdesk-db-password")
	v.SetDefault("secrets.cacheTTL", 300)
}
