// Package sync provides database operations for sync progress tracking.
//
// One row is kept per sync type and reset at the start of every run. This
// package implements the ProgressReporter interface used by the sync
// service.
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	err := repo.StartSync(entities.SyncTypePlays, runID)
package sync

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bgsync/internal/entities"
)

// staleAfter marks a running sync as interrupted when it has not reported
// progress for this long.
const staleAfter = 10 * time.Minute

// Repository handles all sync progress database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSyncProgress retrieves the latest run of syncType.
func (r *Repository) GetSyncProgress(syncType entities.SyncType) (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListSyncProgress returns the latest run of every sync type that ever ran.
func (r *Repository) ListSyncProgress() ([]entities.SyncProgress, error) {
	var all []entities.SyncProgress
	err := r.db.Order("sync_type ASC").Find(&all).Error
	return all, err
}

// StartSync creates or resets the progress record of syncType.
func (r *Repository) StartSync(syncType entities.SyncType, runID string) error {
	var progress entities.SyncProgress
	result := r.db.Where("sync_type = ?", syncType).First(&progress)

	now := time.Now()
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		progress = entities.SyncProgress{
			SyncType:  syncType,
			RunID:     runID,
			Status:    entities.SyncStatusRunning,
			StartedAt: now,
			UpdatedAt: now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.RunID = runID
	progress.Status = entities.SyncStatusRunning
	progress.Processed = 0
	progress.Records = 0
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress records how many units have been fetched so far.
func (r *Repository) UpdateProgress(syncType entities.SyncType, processed, records int) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", syncType).
		Updates(map[string]any{
			"processed":  processed,
			"records":    records,
			"updated_at": time.Now(),
		}).Error
}

// CompleteSync marks the run of syncType as completed or failed.
func (r *Repository) CompleteSync(syncType entities.SyncType, succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.SyncStatusCompleted
	if !succeeded {
		status = entities.SyncStatusFailed
	}

	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", syncType).
		Updates(map[string]any{
			"status":       status,
			"error":        errorMsg,
			"updated_at":   now,
			"completed_at": now,
		}).Error
}

// IsSyncRunning checks if a run of syncType is in progress.
// A run that stopped reporting progress is marked failed instead.
func (r *Repository) IsSyncRunning(syncType entities.SyncType) (bool, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ? AND status = ?", syncType, entities.SyncStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-staleAfter)) {
		_ = r.CompleteSync(syncType, false, "sync was interrupted")
		return false, nil
	}

	return true, nil
}
