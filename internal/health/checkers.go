package health

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Pinger is anything with a context-aware Ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts a Pinger into a Checker
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a named checker around p
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name returns the checker name
func (c *PingChecker) Name() string {
	return c.name
}

// HealthCheck pings the wrapped dependency
func (c *PingChecker) HealthCheck(ctx context.Context) error {
	return c.pinger.Ping(ctx)
}

// PostgresChecker verifies PostgreSQL connectivity over its own
// single-connection database/sql handle
type PostgresChecker struct {
	db *sql.DB
}

// NewPostgresChecker opens a lib/pq handle for dsn. The connection is
// established lazily on the first check.
func NewPostgresChecker(dsn string) (*PostgresChecker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &PostgresChecker{db: db}, nil
}

// Name returns "postgres"
func (c *PostgresChecker) Name() string {
	return "postgres"
}

// HealthCheck verifies PostgreSQL connectivity
func (c *PostgresChecker) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database handle
func (c *PostgresChecker) Close() error {
	return c.db.Close()
}

// RedisChecker verifies Redis connectivity
type RedisChecker struct {
	client redis.Cmdable
}

// NewRedisChecker creates a checker over an existing client
func NewRedisChecker(client redis.Cmdable) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name returns "redis"
func (c *RedisChecker) Name() string {
	return "redis"
}

// HealthCheck verifies Redis connectivity
func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GitHubChecker verifies the GitHub API answers
type GitHubChecker struct {
	api Pinger
}

// NewGitHubChecker creates a checker around the GitHub client
func NewGitHubChecker(api Pinger) *GitHubChecker {
	return &GitHubChecker{api: api}
}

// Name returns "github"
func (c *GitHubChecker) Name() string {
	return "github"
}

// HealthCheck pings the GitHub API root
func (c *GitHubChecker) HealthCheck(ctx context.Context) error {
	return c.api.Ping(ctx)
}
