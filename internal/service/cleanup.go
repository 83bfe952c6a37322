package service

import (
	"context"
	"time"

	"github.com/humanoid-ai/humanoid-server/internal/logger"
	"github.com/humanoid-ai/humanoid-server/internal/model"
)

// Cleanup periodically purges token records past the retention window.
// Retention counts from a record's natural end (expiry or revocation), never
// from creation, so a live record can never be swept.
type Cleanup struct {
	tokens    *Token
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

func NewCleanup(tokens *Token, retention, interval time.Duration, logger *logger.Logger) *Cleanup {
	return &Cleanup{
		tokens:    tokens,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// RunOnce performs a single purge pass and returns the number of records
// deleted together with post-purge store totals.
func (c *Cleanup) RunOnce(ctx context.Context) (int64, model.TokenStats, error) {
	deleted, err := c.tokens.Purge(ctx, c.retention)
	if err != nil {
		return 0, model.TokenStats{}, err
	}

	stats, err := c.tokens.Stats(ctx)
	if err != nil {
		return deleted, model.TokenStats{}, err
	}

	c.logger.Info("Cleanup service: purge completed",
		"deleted", deleted,
		"remaining_total", stats.Total,
		"remaining_active", stats.Active,
		"remaining_revoked", stats.Revoked)

	return deleted, stats, nil
}

// Run sweeps on the configured interval until the context is canceled. The
// first sweep happens immediately.
func (c *Cleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if _, _, err := c.RunOnce(ctx); err != nil {
			c.logger.Error("Cleanup service: purge failed", "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
