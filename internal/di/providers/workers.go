package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/curecircle/curecircle-server/internal/export"
	"github.com/curecircle/curecircle-server/internal/logger"
)

// Export blobs are temporary by design; anything a client never released
// gets swept on this cadence.
const (
	exportSweepInterval = 15 * time.Minute
	exportBlobTTL       = 1 * time.Hour
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := storeHandle.DeleteExpiredSessions(time.Now()); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := storeHandle.DeleteExpiredSessions(time.Now()); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// ExportJanitorJob sweeps unreleased export blobs in the background.
type ExportJanitorJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *ExportJanitorJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideExportJanitorJob provides the export blob janitor.
func ProvideExportJanitorJob(i do.Injector) (*ExportJanitorJob, error) {
	exports := do.MustInvoke[*export.Pipeline](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	go exports.RunJanitor(ctx, exportSweepInterval, exportBlobTTL)

	log.Info("Export janitor started",
		"sweep_interval", exportSweepInterval,
		"blob_ttl", exportBlobTTL,
	)

	return &ExportJanitorJob{cancel: cancel}, nil
}
