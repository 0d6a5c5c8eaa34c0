package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bgsync/internal/logging"
	"github.com/mrlokans/bgsync/internal/services"
	"github.com/mrlokans/bgsync/internal/settingsstore"
)

const defaultSyncTimeout = 30 * time.Minute

// SyncRunner performs a full sync
type SyncRunner interface {
	SyncAll(ctx context.Context) (*services.SyncResult, error)
}

// SyncSettings provides the schedule and stores the outcome of each run
type SyncSettings interface {
	GetBGGSyncConfig() settingsstore.BGGSyncConfig
	SetBGGSyncStatus(status, message string) error
}

// BGGSyncScheduler runs a full sync on the configured cron schedule
type BGGSyncScheduler struct {
	settings    SyncSettings
	runner      SyncRunner
	syncTimeout time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	generation uint64
	baseCtx    context.Context
	cancelFunc context.CancelFunc

	// set while a sync is in flight, whether started by cron or RunNow
	syncCancel context.CancelFunc
	syncDone   chan struct{}
}

// NewBGGSyncScheduler creates a new scheduler instance
func NewBGGSyncScheduler(settings SyncSettings, runner SyncRunner) *BGGSyncScheduler {
	return &BGGSyncScheduler{
		settings:    settings,
		runner:      runner,
		syncTimeout: defaultSyncTimeout,
		cron:        cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if sync is enabled and a username is set.
// Every sync the scheduler runs derives its context from ctx, and
// cancelling ctx stops the scheduler.
func (s *BGGSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.baseCtx = ctx

	config := s.settings.GetBGGSyncConfig()

	if !config.Enabled {
		logging.Info().Msg("BGG sync scheduler: disabled")
		return nil
	}

	if config.Username == "" {
		logging.Info().Msg("BGG sync scheduler: username not configured, skipping")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)
	s.generation++
	gen := s.generation

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	logging.Info().
		Str("schedule", config.Schedule).
		Str("description", settingsstore.GetCronDescription(config.Schedule)).
		Interface("next_run", nextRun).
		Msg("BGG sync scheduler: started")

	go func() {
		<-cancelCtx.Done()
		s.stop(gen)
	}()

	return nil
}

// Stop removes the job, cancels a sync in flight and waits for it to return
func (s *BGGSyncScheduler) Stop() {
	s.stop(0)
}

// stop shuts down the scheduler. A non-zero gen limits it to the run
// started with that generation, so a watcher left over from an earlier
// Start cannot stop a newer one.
func (s *BGGSyncScheduler) stop(gen uint64) {
	stopped := s.stopCron(gen)
	if stopped == nil && gen != 0 {
		return
	}

	s.cancelRunningSync()
	if stopped != nil {
		<-stopped.Done()
		logging.Info().Msg("BGG sync scheduler: stopped")
	}
}

// stopCron removes the job without waiting for it. It returns the cron
// stop context, or nil when there was nothing to stop. The lock is not
// held while callers wait since the job takes it on exit.
func (s *BGGSyncScheduler) stopCron(gen uint64) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning || (gen != 0 && gen != s.generation) {
		return nil
	}

	s.cron.Remove(s.entryID)
	stopped := s.cron.Stop()
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	return stopped
}

func (s *BGGSyncScheduler) cancelRunningSync() {
	s.mu.RLock()
	cancel, done := s.syncCancel, s.syncDone
	s.mu.RUnlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Reschedule restarts the scheduler with current settings. A sync in
// flight keeps running.
func (s *BGGSyncScheduler) Reschedule() error {
	s.stopCron(0)

	s.mu.RLock()
	ctx := s.baseCtx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Start(ctx)
}

// RunNow triggers an immediate sync in the background
func (s *BGGSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active
func (s *BGGSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a scheduled sync is currently in progress
func (s *BGGSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// GetNextRunTime returns when the next sync will occur
func (s *BGGSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync performs one full sync and records its outcome
func (s *BGGSyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		logging.Info().Msg("BGG sync: skipped (already syncing)")
		return
	}
	parent := s.baseCtx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, s.syncTimeout)
	done := make(chan struct{})
	s.isSyncing = true
	s.syncCancel, s.syncDone = cancel, done
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.isSyncing = false
		s.syncCancel, s.syncDone = nil, nil
		s.mu.Unlock()
		close(done)
	}()

	if !s.settings.GetBGGSyncConfig().Enabled {
		logging.Info().Msg("BGG sync: skipped (disabled)")
		return
	}

	_ = s.settings.SetBGGSyncStatus(settingsstore.SyncStatusRunning, "")
	startTime := time.Now()

	result, err := s.runner.SyncAll(ctx)
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			logging.Info().Msg("BGG sync: skipped (another sync is running)")
			return
		}
		if errors.Is(err, context.Canceled) {
			logging.Info().Msg("BGG sync: cancelled")
			_ = s.settings.SetBGGSyncStatus(settingsstore.SyncStatusFailed, "sync cancelled")
			return
		}
		logging.Warn().Err(err).Bool("retryable", services.IsRetryable(err)).Msg("BGG sync: failed")
		_ = s.settings.SetBGGSyncStatus(settingsstore.SyncStatusFailed, err.Error())
		return
	}

	msg := fmt.Sprintf("Synced %d collection items and %d plays in %v",
		result.CollectionItems(), result.Plays, time.Since(startTime).Round(time.Millisecond))
	logging.Info().Str("run_id", result.RunID).Msg("BGG sync: " + msg)
	_ = s.settings.SetBGGSyncStatus(settingsstore.SyncStatusSuccess, msg)
}
