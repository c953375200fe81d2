package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/portfolio/internal/models"
)

// ErrCacheMiss is returned when no snapshot is cached for a user
var ErrCacheMiss = errors.New("github snapshot not cached")

// Cache stores the last successful snapshot per user
type Cache interface {
	Get(ctx context.Context, username string) (*models.GitHubSnapshot, error)
	Set(ctx context.Context, snap *models.GitHubSnapshot, ttl time.Duration) error
}

// RedisCache keeps snapshots as JSON strings in Redis
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps an existing Redis client
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(username string) string {
	return "portfolio:github:" + username
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, username string) (*models.GitHubSnapshot, error) {
	data, err := c.client.Get(ctx, cacheKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read github cache: %w", err)
	}

	var snap models.GitHubSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal github cache: %w", err)
	}
	return &snap, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, snap *models.GitHubSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal github snapshot: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(snap.Username), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write github cache: %w", err)
	}
	return nil
}

// MemoryCache is a Cache for runs without Redis. Entries do not expire.
type MemoryCache struct {
	mu    sync.RWMutex
	snaps map[string]models.GitHubSnapshot
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{snaps: make(map[string]models.GitHubSnapshot)}
}

// Get implements Cache
func (c *MemoryCache) Get(ctx context.Context, username string) (*models.GitHubSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.snaps[username]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &snap, nil
}

// Set implements Cache
func (c *MemoryCache) Set(ctx context.Context, snap *models.GitHubSnapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[snap.Username] = *snap
	return nil
}
