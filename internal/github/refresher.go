package github

import (
	"context"
	"log/slog"
	"time"
)

// Refresher periodically refreshes the GitHub snapshot
type Refresher struct {
	service  *Service
	interval time.Duration
}

// NewRefresher creates a refresh worker
func NewRefresher(service *Service, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &Refresher{
		service:  service,
		interval: interval,
	}
}

// Start begins the refresh worker in a goroutine
func (r *Refresher) Start(ctx context.Context) {
	go r.run(ctx)
}

// run is the main loop for the refresh worker
func (r *Refresher) run(ctx context.Context) {
	slog.Info("github refresher started", "interval", r.interval, "username", r.service.Username())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run immediately on start unless the cache is still fresh
	if !r.service.WarmFromCache(ctx) {
		r.refresh(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("github refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Errors are logged and recorded on the snapshot by the service
	_, _ = r.service.Refresh(fetchCtx)
}
