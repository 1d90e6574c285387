// Package db bootstraps the Postgres schema and drives the periodic
// medicine maintenance sweep.
package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the system-wide maintenance the cleaner runs on every tick.
type Sweeper interface {
	// UpdateAllStatuses recomputes every medicine status and returns how
	// many records changed.
	UpdateAllStatuses(ctx context.Context) (int, error)
	// CleanupExpiredMedicines purges expired records past the retention
	// window and returns how many were removed.
	CleanupExpiredMedicines(ctx context.Context) (int64, error)
}

// StartRetentionSweeper refreshes statuses and purges old expired
// medicines every interval until ctx is done. Statuses are refreshed
// first so the purge sees records that expired since the last tick.
func StartRetentionSweeper(
	ctx context.Context,
	sweeper Sweeper,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				changed, err := sweeper.UpdateAllStatuses(ctx)
				if err != nil {
					log.Error("failed to refresh medicine statuses", zap.Error(err))
					continue
				}
				if changed > 0 {
					log.Info("refreshed medicine statuses", zap.Int("changed", changed))
				}

				removed, err := sweeper.CleanupExpiredMedicines(ctx)
				if err != nil {
					log.Error("failed to clean expired medicines", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned expired medicines", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
