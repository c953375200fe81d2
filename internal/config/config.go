package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the portfolio site
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	Database DatabaseConfig
	Redis    RedisConfig
	GitHub   GitHubConfig
	Session  SessionConfig
	Admin    AdminConfig
	Cleanup  CleanupConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// SiteConfig holds page content settings
type SiteConfig struct {
	Owner       string
	CatalogFile string
}

// DatabaseConfig holds PostgreSQL configuration. An empty DSN keeps
// contact messages and view events in memory.
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
	Migrate       bool
}

// RedisConfig holds Redis configuration. An empty address keeps visitor
// sessions and the GitHub cache in memory.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// GitHubConfig holds GitHub showcase configuration
type GitHubConfig struct {
	Username        string
	APIURL          string
	Token           string
	PerPage         int
	RefreshInterval time.Duration
}

// SessionConfig holds visitor session configuration
type SessionConfig struct {
	TTL time.Duration
}

// AdminConfig holds the bearer token guarding the admin API. An empty
// token disables those routes.
type AdminConfig struct {
	Token string
}

// CleanupConfig holds cleanup worker configuration
type CleanupConfig struct {
	Interval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Site: SiteConfig{
			Owner:       getEnv("SITE_OWNER", "Maryam Al Mobarak"),
			CatalogFile: getEnv("CATALOG_FILE", ""),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", "./migrations"),
			Migrate:       getEnvAsBool("DATABASE_MIGRATE", true),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		GitHub: GitHubConfig{
			Username:        getEnv("GITHUB_USERNAME", "maryamzakmbk"),
			APIURL:          getEnv("GITHUB_API_URL", "https://api.github.com"),
			Token:           getEnv("GITHUB_TOKEN", ""),
			PerPage:         getEnvAsInt("GITHUB_PER_PAGE", 6),
			RefreshInterval: getEnvAsDuration("GITHUB_REFRESH_INTERVAL", 15*time.Minute),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Site.Owner == "" {
		return fmt.Errorf("site owner is required")
	}

	if c.GitHub.Username == "" {
		return fmt.Errorf("github username is required")
	}

	if u, err := url.Parse(c.GitHub.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid github api url: %q", c.GitHub.APIURL)
	}

	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("github per page must be between 1 and 100: %d", c.GitHub.PerPage)
	}

	if c.GitHub.RefreshInterval <= 0 {
		return fmt.Errorf("github refresh interval must be positive")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UsesPostgres reports whether a database DSN is configured
func (d DatabaseConfig) UsesPostgres() bool {
	return d.DSN != ""
}

// UsesRedis reports whether a Redis address is configured
func (r RedisConfig) UsesRedis() bool {
	return r.Address != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
