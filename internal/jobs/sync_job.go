package jobs

import (
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/momentlog/internal/service"
)

const syncTimeout = 2 * time.Minute

// SyncJob pulls new moments into the gallery on a schedule.
type SyncJob struct {
	sync *service.SyncService
}

// NewSyncJob constructs a SyncJob.
func NewSyncJob(sync *service.SyncService) *SyncJob {
	return &SyncJob{sync: sync}
}

// Run performs one sync pass. Without a stored credential it skips quietly;
// a manual login has to happen first.
func (j *SyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	result, err := j.sync.Sync(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			log.Info("moment sync skipped, not logged in")
			return
		}
		log.Error("moment sync failed", "err", err)
		return
	}

	log.Info("moment sync finished",
		"fetched", result.Fetched,
		"added", result.Added,
		"total", result.Total,
	)
}
