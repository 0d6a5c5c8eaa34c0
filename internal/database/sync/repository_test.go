package sync

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bgsync/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sync.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.SyncProgress{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_StartSync(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.StartSync(entities.SyncTypeCollection, "run-1")
	require.NoError(t, err)

	progress, err := repo.GetSyncProgress(entities.SyncTypeCollection)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncTypeCollection, progress.SyncType)
	assert.Equal(t, entities.SyncStatusRunning, progress.Status)
	assert.Equal(t, "run-1", progress.RunID)
	assert.Equal(t, 0, progress.Processed)
}

func TestRepository_StartSync_Reset(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.StartSync(entities.SyncTypePlays, "run-1"))
	require.NoError(t, repo.UpdateProgress(entities.SyncTypePlays, 3, 300))
	require.NoError(t, repo.CompleteSync(entities.SyncTypePlays, false, "boom"))

	require.NoError(t, repo.StartSync(entities.SyncTypePlays, "run-2"))

	progress, err := repo.GetSyncProgress(entities.SyncTypePlays)
	require.NoError(t, err)
	assert.Equal(t, "run-2", progress.RunID)
	assert.Equal(t, entities.SyncStatusRunning, progress.Status)
	assert.Equal(t, 0, progress.Processed)
	assert.Equal(t, 0, progress.Records)
	assert.Empty(t, progress.Error)
	assert.Nil(t, progress.CompletedAt)
}

func TestRepository_UpdateProgress(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.StartSync(entities.SyncTypePlays, "run-1"))
	require.NoError(t, repo.UpdateProgress(entities.SyncTypePlays, 2, 200))

	progress, err := repo.GetSyncProgress(entities.SyncTypePlays)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Processed)
	assert.Equal(t, 200, progress.Records)
}

func TestRepository_CompleteSync(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.StartSync(entities.SyncTypeCollection, "run-1"))
	require.NoError(t, repo.CompleteSync(entities.SyncTypeCollection, true, ""))

	progress, err := repo.GetSyncProgress(entities.SyncTypeCollection)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusCompleted, progress.Status)
	assert.NotNil(t, progress.CompletedAt)

	require.NoError(t, repo.StartSync(entities.SyncTypeCollection, "run-2"))
	require.NoError(t, repo.CompleteSync(entities.SyncTypeCollection, false, "retries exhausted"))

	progress, err = repo.GetSyncProgress(entities.SyncTypeCollection)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusFailed, progress.Status)
	assert.Equal(t, "retries exhausted", progress.Error)
}

func TestRepository_TypesAreIndependent(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.StartSync(entities.SyncTypeCollection, "run-1"))
	require.NoError(t, repo.StartSync(entities.SyncTypePlays, "run-2"))
	require.NoError(t, repo.CompleteSync(entities.SyncTypeCollection, true, ""))

	running, err := repo.IsSyncRunning(entities.SyncTypeCollection)
	require.NoError(t, err)
	assert.False(t, running)

	running, err = repo.IsSyncRunning(entities.SyncTypePlays)
	require.NoError(t, err)
	assert.True(t, running)

	all, err := repo.ListSyncProgress()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entities.SyncTypeCollection, all[0].SyncType)
	assert.Equal(t, entities.SyncTypePlays, all[1].SyncType)
}

func TestRepository_IsSyncRunning_NotRunning(t *testing.T) {
	repo := setupTestDB(t)

	running, err := repo.IsSyncRunning(entities.SyncTypeAll)
	require.NoError(t, err)
	assert.False(t, running)
}

func TestRepository_IsSyncRunning_StaleSync(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.StartSync(entities.SyncTypeAll, "run-1"))

	// Manually set updated_at to 15 minutes ago to simulate stale sync
	repo.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ?", entities.SyncTypeAll).
		Update("updated_at", time.Now().Add(-15*time.Minute))

	running, err := repo.IsSyncRunning(entities.SyncTypeAll)
	require.NoError(t, err)
	assert.False(t, running)

	progress, err := repo.GetSyncProgress(entities.SyncTypeAll)
	require.NoError(t, err)
	assert.Equal(t, entities.SyncStatusFailed, progress.Status)
	assert.Equal(t, "sync was interrupted", progress.Error)
}
