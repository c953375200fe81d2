package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/portfolio/internal/models"
)

// MemoryRepository implements Repository in process memory
type MemoryRepository struct {
	mu       sync.RWMutex
	messages []*models.ContactMessage
	views    map[string]int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		views: make(map[string]int64),
	}
}

// SaveContactMessage stores a copy of msg
func (r *MemoryRepository) SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *msg
	r.messages = append(r.messages, &c)
	return nil
}

// ListContactMessages returns messages newest first
func (r *MemoryRepository) ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := make([]*models.ContactMessage, len(r.messages))
	copy(sorted, r.messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return []*models.ContactMessage{}, nil
	}
	sorted = sorted[offset:]
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	result := make([]*models.ContactMessage, len(sorted))
	for i, m := range sorted {
		c := *m
		result[i] = &c
	}
	return result, nil
}

// RecordView counts one view event
func (r *MemoryRepository) RecordView(ctx context.Context, visitorID, viewID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[viewID]++
	return nil
}

// CountViews returns how many times viewID was recorded
func (r *MemoryRepository) CountViews(ctx context.Context, viewID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.views[viewID], nil
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}
