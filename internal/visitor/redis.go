package visitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/portfolio/internal/models"
)

const keyPrefix = "portfolio:"

// RedisStore keeps sessions in Redis. Each session is a hash plus a sorted
// set of viewed ids (scored by first view time), both expiring after the
// idle TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(opts *redis.Options, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Client exposes the connection for other Redis-backed components
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func visitorKey(id string) string { return keyPrefix + "visitor:" + id }
func viewedKey(id string) string { return keyPrefix + "visitor:" + id + ":viewed" }
func visitsKey() string { return keyPrefix + "visits" }

// Hash fields of a visitor record
const (
	fieldTheme      = "theme"
	fieldStartedAt  = "started_at"
	fieldLastSeenAt = "last_seen_at"
	fieldCategory   = "category"
	fieldComplexity = "complexity"
	fieldTechnology = "technology"
	fieldSort       = "sort"
)

// Touch implements Store. Defaults are written with HSETNX and only
// last_seen_at is overwritten, so a concurrent Save is never undone.
func (s *RedisStore) Touch(ctx context.Context, id string) (*models.Visitor, bool, error) {
	now := s.now()
	key := visitorKey(id)

	pipe := s.client.TxPipeline()
	started := pipe.HSetNX(ctx, key, fieldStartedAt, formatTime(now))
	pipe.HSetNX(ctx, key, fieldTheme, string(models.ThemeLight))
	pipe.HSetNX(ctx, key, fieldCategory, models.FilterAll)
	pipe.HSetNX(ctx, key, fieldComplexity, models.FilterAll)
	pipe.HSetNX(ctx, key, fieldTechnology, models.FilterAll)
	pipe.HSetNX(ctx, key, fieldSort, string(models.SortDefault))
	pipe.HSet(ctx, key, fieldLastSeenAt, formatTime(now))
	pipe.Expire(ctx, key, s.ttl)
	pipe.Expire(ctx, viewedKey(id), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to touch visitor: %w", err)
	}

	created := started.Val()
	if created {
		if err := s.client.Incr(ctx, visitsKey()).Err(); err != nil {
			slog.Error("failed to increment visit count", "error", err, "visitor", id)
		}
	}

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return v, created, nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Visitor, error) {
	fields, err := s.client.HGetAll(ctx, visitorKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	viewed, err := s.client.ZRange(ctx, viewedKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get viewed set: %w", err)
	}
	if viewed == nil {
		viewed = []string{}
	}

	v := &models.Visitor{
		ID:         id,
		Theme:      models.Theme(fields[fieldTheme]),
		StartedAt:  parseTime(fields[fieldStartedAt]),
		LastSeenAt: parseTime(fields[fieldLastSeenAt]),
		Viewed:     viewed,
		Filters: models.FilterSelection{
			Category:   fields[fieldCategory],
			Complexity: fields[fieldComplexity],
			Technology: fields[fieldTechnology],
		}.Normalize(),
		Sort: models.SortKey(fields[fieldSort]),
	}
	if !v.Theme.IsValid() {
		v.Theme = models.ThemeLight
	}
	if v.Sort == "" {
		v.Sort = models.SortDefault
	}
	return v, nil
}

// Save implements Store. Only the preference fields are written.
func (s *RedisStore) Save(ctx context.Context, v *models.Visitor) error {
	key := visitorKey(v.ID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check visitor: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	now := s.now()
	filters := v.Filters.Normalize()

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, key, fieldStartedAt, formatTime(now))
	pipe.HSet(ctx, key,
		fieldTheme, string(v.Theme),
		fieldCategory, filters.Category,
		fieldComplexity, filters.Complexity,
		fieldTechnology, filters.Technology,
		fieldSort, string(v.Sort),
		fieldLastSeenAt, formatTime(now),
	)
	pipe.Expire(ctx, key, s.ttl)
	pipe.Expire(ctx, viewedKey(v.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save visitor: %w", err)
	}
	return nil
}

// TrackView implements Store
func (s *RedisStore) TrackView(ctx context.Context, id, viewID string) (bool, error) {
	exists, err := s.client.Exists(ctx, visitorKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check visitor: %w", err)
	}
	if exists == 0 {
		return false, ErrNotFound
	}

	added, err := s.client.ZAddNX(ctx, viewedKey(id), redis.Z{
		Score:  float64(s.now().UnixMicro()),
		Member: viewID,
	}).Result()
	if err != nil {
		return false, fmt.Errorf("failed to track view: %w", err)
	}

	if err := s.client.Expire(ctx, viewedKey(id), s.ttl).Err(); err != nil {
		slog.Warn("failed to refresh viewed set ttl", "error", err, "visitor", id)
	}

	return added > 0, nil
}

// TotalVisits implements Store
func (s *RedisStore) TotalVisits(ctx context.Context) (int64, error) {
	n, err := s.client.Get(ctx, visitsKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read visit count: %w", err)
	}
	return n, nil
}

// Ping implements Store
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
