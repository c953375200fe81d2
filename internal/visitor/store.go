// Package visitor keeps per-browser session state: theme preference, the
// current project filters and sort key, the viewed-projects set and the
// global visit counter.
package visitor

import (
	"context"
	"errors"
	"time"

	"github.com/terra-clan/portfolio/internal/models"
)

// ErrNotFound is returned when a visitor session does not exist or has expired
var ErrNotFound = errors.New("visitor not found")

// DefaultTTL is how long an idle session is kept
const DefaultTTL = 24 * time.Hour

// Store persists visitor sessions
type Store interface {
	// Touch returns the session for id, creating it (and counting a visit)
	// when it does not exist. created reports whether a new session started.
	Touch(ctx context.Context, id string) (v *models.Visitor, created bool, err error)

	// Get returns an existing session
	Get(ctx context.Context, id string) (*models.Visitor, error)

	// Save stores theme, filters and sort of v. The viewed set is only
	// changed through TrackView.
	Save(ctx context.Context, v *models.Visitor) error

	// TrackView adds viewID to the session's viewed set. added is false when
	// it was already present.
	TrackView(ctx context.Context, id, viewID string) (added bool, err error)

	// TotalVisits returns the number of sessions ever started
	TotalVisits(ctx context.Context) (int64, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
