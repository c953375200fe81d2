package visitor

import (
	"context"
	"sync"
	"time"

	"github.com/terra-clan/portfolio/internal/models"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*models.Visitor
	visits   int64
}

// NewMemoryStore creates an in-memory store with the given idle TTL
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*models.Visitor),
	}
}

// Touch implements Store
func (s *MemoryStore) Touch(ctx context.Context, id string) (*models.Visitor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if v, ok := s.live(id, now); ok {
		v.LastSeenAt = now
		return clone(v), false, nil
	}

	v := models.NewVisitor(id, now)
	s.sessions[id] = v
	s.visits++
	return clone(v), true, nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.live(id, s.now())
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

// Save implements Store
func (s *MemoryStore) Save(ctx context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cur, ok := s.live(v.ID, now)
	if !ok {
		return ErrNotFound
	}
	cur.Theme = v.Theme
	cur.Filters = v.Filters
	cur.Sort = v.Sort
	cur.LastSeenAt = now
	return nil
}

// TrackView implements Store
func (s *MemoryStore) TrackView(ctx context.Context, id, viewID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.live(id, s.now())
	if !ok {
		return false, ErrNotFound
	}
	if v.HasViewed(viewID) {
		return false, nil
	}
	v.Viewed = append(v.Viewed, viewID)
	return true, nil
}

// TotalVisits implements Store
func (s *MemoryStore) TotalVisits(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visits, nil
}

// PruneExpired drops sessions idle for longer than the TTL
func (s *MemoryStore) PruneExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	pruned := 0
	for id, v := range s.sessions {
		if s.expired(v, now) {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned, nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}

// live returns the session for id if it has not expired. Caller holds mu.
func (s *MemoryStore) live(id string, now time.Time) (*models.Visitor, bool) {
	v, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(v, now) {
		delete(s.sessions, id)
		return nil, false
	}
	return v, true
}

func (s *MemoryStore) expired(v *models.Visitor, now time.Time) bool {
	return now.Sub(v.LastSeenAt) > s.ttl
}

func clone(v *models.Visitor) *models.Visitor {
	c := *v
	c.Viewed = append([]string(nil), v.Viewed...)
	if c.Viewed == nil {
		c.Viewed = []string{}
	}
	return &c
}
