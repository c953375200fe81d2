package storage

import (
	"context"
	"time"

	"github.com/terra-clan/portfolio/internal/models"
)

// Repository defines the interface for durable site data
type Repository interface {
	// Contact messages
	SaveContactMessage(ctx context.Context, msg *models.ContactMessage) error
	ListContactMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error)

	// View events
	RecordView(ctx context.Context, visitorID, viewID string, at time.Time) error
	CountViews(ctx context.Context, viewID string) (int64, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
