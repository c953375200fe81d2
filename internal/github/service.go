package github

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/terra-clan/portfolio/internal/models"
)

// Fetcher lists a user's repositories
type Fetcher interface {
	ListRepos(ctx context.Context, username string) ([]models.Repository, error)
}

// Service keeps the current GitHub snapshot for one user
type Service struct {
	fetcher  Fetcher
	cache    Cache
	username string
	ttl      time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	current models.GitHubSnapshot
}

// NewService creates a service. ttl bounds how long a cached snapshot is reused.
func NewService(fetcher Fetcher, cache Cache, username string, ttl time.Duration) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		username: username,
		ttl:      ttl,
		now:      time.Now,
		current:  models.GitHubSnapshot{Username: username},
	}
}

// Username returns the GitHub account shown on the page
func (s *Service) Username() string {
	return s.username
}

// Refresh fetches the repositories. On failure the last good data is kept
// and the error is recorded on the snapshot.
func (s *Service) Refresh(ctx context.Context) (models.GitHubSnapshot, error) {
	repos, err := s.fetcher.ListRepos(ctx, s.username)
	if err != nil {
		slog.Error("failed to fetch github repositories", "error", err, "username", s.username)

		s.mu.Lock()
		s.current.Error = err.Error()
		snap := s.current
		s.mu.Unlock()
		return snap, err
	}

	now := s.now()
	snap := models.GitHubSnapshot{
		Username:  s.username,
		Repos:     repos,
		Stats:     ComputeStats(repos),
		FetchedAt: &now,
	}

	if err := s.cache.Set(ctx, &snap, s.ttl); err != nil {
		slog.Warn("failed to cache github snapshot", "error", err)
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	slog.Info("github repositories refreshed", "username", s.username, "count", len(repos))
	return snap, nil
}

// Snapshot returns the current snapshot, falling back to the cache when
// nothing has been fetched by this process yet.
func (s *Service) Snapshot(ctx context.Context) models.GitHubSnapshot {
	s.mu.RLock()
	snap := s.current
	s.mu.RUnlock()

	if snap.Loaded() {
		return snap
	}

	cached, err := s.cache.Get(ctx, s.username)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.Warn("failed to read github cache", "error", err)
		}
		return snap
	}

	s.mu.Lock()
	if !s.current.Loaded() {
		s.current = *cached
	}
	snap = s.current
	s.mu.Unlock()

	return snap
}

// WarmFromCache loads a cached snapshot if it is still fresh. It reports
// whether a network fetch can be skipped.
func (s *Service) WarmFromCache(ctx context.Context) bool {
	cached, err := s.cache.Get(ctx, s.username)
	if err != nil {
		return false
	}
	if cached.FetchedAt == nil || s.now().Sub(*cached.FetchedAt) > s.ttl {
		return false
	}

	s.mu.Lock()
	s.current = *cached
	s.mu.Unlock()
	return true
}
