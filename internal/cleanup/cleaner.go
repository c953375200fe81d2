package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Pruner drops expired records and reports how many went
type Pruner interface {
	PruneExpired(ctx context.Context) (int, error)
}

// Cleaner handles periodic cleanup of idle visitor sessions
type Cleaner struct {
	pruner   Pruner
	interval time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(pruner Pruner, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		pruner:   pruner,
		interval: interval,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// cleanup runs one prune cycle
func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	removed, err := c.pruner.PruneExpired(ctx)
	if err != nil {
		slog.Error("failed to prune expired sessions", "error", err)
		return
	}

	if removed == 0 {
		slog.Debug("no expired sessions found")
		return
	}

	slog.Info("expired sessions pruned", "count", removed)
}
