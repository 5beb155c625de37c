package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/service"
)

// TokenCleanupJob prunes expired sync token records periodically.
type TokenCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *TokenCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideTokenCleanupJob provides the periodic sync-token cleanup job.
func ProvideTokenCleanupJob(i do.Injector) (*TokenCleanupJob, error) {
	syncService := do.MustInvoke[*service.SyncService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if err := syncService.PruneExpiredTokens(ctx); err != nil {
			log.Warn("Initial sync token cleanup failed", "error", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := syncService.PruneExpiredTokens(ctx); err != nil {
					log.Warn("Sync token cleanup failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &TokenCleanupJob{cancel: cancel}, nil
}
