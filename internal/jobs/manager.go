package jobs

import (
	log "log/slog"

	"github.com/robfig/cron/v3"
)

// Manager owns the cron engine and the registered jobs.
type Manager struct {
	engine   *cron.Cron
	schedule string
	syncJob  *SyncJob
}

// NewManager builds a manager running syncJob on the given schedule. An empty
// schedule disables the engine.
func NewManager(schedule string, syncJob *SyncJob) *Manager {
	return &Manager{
		engine:   cron.New(cron.WithSeconds()),
		schedule: schedule,
		syncJob:  syncJob,
	}
}

// RegisterJobs adds the scheduled jobs to the engine.
func (m *Manager) RegisterJobs() error {
	if m.schedule == "" {
		return nil
	}
	if _, err := m.engine.AddJob(m.schedule, m.syncJob); err != nil {
		return err
	}
	return nil
}

func (m *Manager) Start() {
	if m.schedule == "" {
		return
	}
	log.Info("cron engine started", "schedule", m.schedule)
	m.engine.Start()
}

func (m *Manager) Stop() {
	if m.schedule == "" {
		return
	}
	log.Info("cron engine stopped")
	m.engine.Stop()
}
