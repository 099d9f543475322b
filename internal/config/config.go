package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	OAuth    OAuthConfig
	Session  SessionConfig
	Platform PlatformConfig
	AI       AIConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	FrontendURL  string
}

// OAuthConfig holds the Google OAuth client settings for the YouTube API.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string //nolint:gosec // G117: OAuth client config
	RedirectURL  string
}

// SessionConfig holds session gate settings.
type SessionConfig struct {
	TTL         time.Duration
	RefreshSkew time.Duration
	VaultKey    string //nolint:gosec // G117: credential encryption key config
}

// PlatformConfig holds YouTube Data API client settings.
type PlatformConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	MaxPageSize int
}

// AIConfig holds reply-generation settings.
type AIConfig struct {
	APIKey  string //nolint:gosec // G117: API key config
	Model   string
	Timeout time.Duration
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (OAuth secret, vault key, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("YTC_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("YTC_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("YTC_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("YTC_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("YTC_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	sessionTTL, err := getEnvDuration("YTC_SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshSkew, err := getEnvDuration("YTC_SESSION_REFRESH_SKEW", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	platformTimeout, err := getEnvDuration("YTC_PLATFORM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	platformRetries, err := getEnvInt("YTC_PLATFORM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	platformPageSize, err := getEnvInt("YTC_PLATFORM_PAGE_SIZE", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	aiTimeout, err := getEnvDuration("YTC_AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("YTC_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("YTC_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("YTC_DB_USER", "ytc"),
			Password: getEnv("YTC_DB_PASSWORD", ""),
			DBName:   getEnv("YTC_DB_NAME", "ytc_dev"),
			SSLMode:  getEnv("YTC_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("YTC_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("YTC_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Server: ServerConfig{
			Addr:         getEnv("YTC_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			FrontendURL:  getEnv("YTC_FRONTEND_URL", "http://localhost:5173"),
		},
		OAuth: OAuthConfig{
			ClientID:     getEnv("YTC_OAUTH_CLIENT_ID", ""),
			ClientSecret: getEnv("YTC_OAUTH_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("YTC_OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/callback"),
		},
		Session: SessionConfig{
			TTL:         sessionTTL,
			RefreshSkew: refreshSkew,
			VaultKey:    getEnv("YTC_VAULT_KEY", ""),
		},
		Platform: PlatformConfig{
			BaseURL:     getEnv("YTC_PLATFORM_BASE_URL", "https://www.googleapis.com/youtube/v3"),
			Timeout:     platformTimeout,
			MaxRetries:  platformRetries,
			MaxPageSize: platformPageSize,
		},
		AI: AIConfig{
			APIKey:  getEnv("YTC_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Model:   getEnv("YTC_AI_MODEL", "gpt-4o-mini"),
			Timeout: aiTimeout,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return errors.New("YTC_OAUTH_CLIENT_ID and YTC_OAUTH_CLIENT_SECRET are required")
	}

	// The vault key is required (no insecure default) and must decode to
	// 32 bytes; the secrets package enforces the length at construction.
	if c.Session.VaultKey == "" {
		return errors.New("YTC_VAULT_KEY is required")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("YTC_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("YTC_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("YTC_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("YTC_SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.RefreshSkew <= 0 {
		return fmt.Errorf("YTC_SESSION_REFRESH_SKEW must be positive, got %s", c.Session.RefreshSkew)
	}
	if c.Platform.MaxRetries < 1 {
		return fmt.Errorf("YTC_PLATFORM_MAX_RETRIES must be >= 1, got %d", c.Platform.MaxRetries)
	}
	if c.Platform.MaxPageSize < 1 || c.Platform.MaxPageSize > 100 {
		return fmt.Errorf("YTC_PLATFORM_PAGE_SIZE must be 1-100, got %d", c.Platform.MaxPageSize)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("YTC_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("YTC_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
