package settingsstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bgsync/internal/database"
	"github.com/mrlokans/bgsync/internal/database/settings"
	"github.com/mrlokans/bgsync/internal/entities"
)

func setupTestStore(t *testing.T) (*SettingsStore, *settings.Repository) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := settings.NewRepository(db.DB)
	return New(repo), repo
}

func TestBGGUsername(t *testing.T) {
	t.Setenv(EnvBGGUsername, "")
	store, repo := setupTestStore(t)

	assert.Equal(t, "", store.GetBGGUsername())
	assert.Equal(t, SourceDefault, store.GetBGGUsernameSource())
	assert.Equal(t, "", store.CurrentUsername())

	require.NoError(t, store.SetBGGUsername("  alice  "))
	assert.Equal(t, "alice", store.CurrentUsername())
	assert.Equal(t, SourceDatabase, store.GetBGGUsernameSource())

	require.NoError(t, repo.DeleteSetting(entities.SettingKeyBGGUsername))
	assert.Equal(t, "", store.CurrentUsername())
}

func TestBGGUsernameWithEnv(t *testing.T) {
	t.Setenv(EnvBGGUsername, "envuser")
	store, _ := setupTestStore(t)

	assert.Equal(t, "envuser", store.GetBGGUsername())
	assert.Equal(t, SourceEnvironment, store.GetBGGUsernameSource())

	// Database should override env
	require.NoError(t, store.SetBGGUsername("dbuser"))
	assert.Equal(t, "dbuser", store.GetBGGUsername())
	assert.Equal(t, SourceDatabase, store.GetBGGUsernameSource())
}

func TestBGGUsername_RejectsBlank(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Error(t, store.SetBGGUsername("   "))
}

func TestBGGSyncEnabled(t *testing.T) {
	t.Setenv(EnvBGGSyncEnabled, "")
	store, _ := setupTestStore(t)

	assert.False(t, store.GetBGGSyncEnabled())
	assert.Equal(t, SourceDefault, store.GetBGGSyncEnabledSource())

	require.NoError(t, store.SetBGGSyncEnabled(true))
	assert.True(t, store.GetBGGSyncEnabled())
	assert.Equal(t, SourceDatabase, store.GetBGGSyncEnabledSource())
}

func TestBGGSyncEnabledWithEnv(t *testing.T) {
	t.Setenv(EnvBGGSyncEnabled, "1")
	store, _ := setupTestStore(t)

	assert.True(t, store.GetBGGSyncEnabled())
	assert.Equal(t, SourceEnvironment, store.GetBGGSyncEnabledSource())

	require.NoError(t, store.SetBGGSyncEnabled(false))
	assert.False(t, store.GetBGGSyncEnabled())
	assert.Equal(t, SourceDatabase, store.GetBGGSyncEnabledSource())
}

func TestBGGSyncSchedule(t *testing.T) {
	t.Setenv(EnvBGGSyncSchedule, "")
	store, _ := setupTestStore(t)

	assert.Equal(t, DefaultBGGSyncSchedule, store.GetBGGSyncSchedule())
	assert.Equal(t, SourceDefault, store.GetBGGSyncScheduleSource())

	require.NoError(t, store.SetBGGSyncSchedule("0 0 * * *"))
	assert.Equal(t, "0 0 * * *", store.GetBGGSyncSchedule())

	err := store.SetBGGSyncSchedule("every day")
	assert.Error(t, err)
	assert.Equal(t, "0 0 * * *", store.GetBGGSyncSchedule())
}

func TestBGGSyncConfigInfo(t *testing.T) {
	t.Setenv(EnvBGGUsername, "")
	t.Setenv(EnvBGGSyncEnabled, "")
	t.Setenv(EnvBGGSyncSchedule, "0 * * * *")
	store, _ := setupTestStore(t)

	info := store.GetBGGSyncConfigInfo()
	assert.False(t, info.LoggedIn)
	assert.False(t, info.Enabled)
	assert.Nil(t, info.NextRunAt)
	assert.Equal(t, "0 * * * *", info.Schedule)
	assert.Equal(t, SourceEnvironment, info.ScheduleSource)
	assert.Equal(t, "Every hour at :00", info.ScheduleDescription)

	require.NoError(t, store.SetBGGUsername("alice"))
	require.NoError(t, store.SetBGGSyncEnabled(true))

	info = store.GetBGGSyncConfigInfo()
	assert.True(t, info.LoggedIn)
	assert.Equal(t, "alice", info.Username)
	require.NotNil(t, info.NextRunAt)
	assert.True(t, info.NextRunAt.After(time.Now()))

	cfg := store.GetBGGSyncConfig()
	assert.Equal(t, BGGSyncConfig{Username: "alice", Enabled: true, Schedule: "0 * * * *"}, cfg)
}

func TestClearBGGSyncSettings(t *testing.T) {
	t.Setenv(EnvBGGUsername, "")
	t.Setenv(EnvBGGSyncEnabled, "")
	t.Setenv(EnvBGGSyncSchedule, "")
	store, _ := setupTestStore(t)

	require.NoError(t, store.SetBGGUsername("alice"))
	require.NoError(t, store.SetBGGSyncEnabled(true))
	require.NoError(t, store.SetBGGSyncSchedule("0 0 * * *"))
	require.NoError(t, store.RecordSyncTime(entities.SyncTypeCollection, time.Now()))

	require.NoError(t, store.ClearBGGSyncSettings())

	assert.Equal(t, "", store.GetBGGUsername())
	assert.False(t, store.GetBGGSyncEnabled())
	assert.Equal(t, DefaultBGGSyncSchedule, store.GetBGGSyncSchedule())
	// timestamps are sync history, not settings
	assert.NotNil(t, store.GetSyncTime(entities.SyncTypeCollection))
}

func TestSyncTimes(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Nil(t, store.GetSyncTime(entities.SyncTypeCollection))
	assert.Nil(t, store.GetSyncTime(entities.SyncTypePlays))
	assert.Nil(t, store.GetSyncTime(entities.SyncTypeAll))

	at := time.Date(2025, 1, 4, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.RecordSyncTime(entities.SyncTypePlays, at))

	got := store.GetSyncTime(entities.SyncTypePlays)
	require.NotNil(t, got)
	assert.True(t, at.Equal(*got))
	assert.Nil(t, store.GetSyncTime(entities.SyncTypeCollection))

	status := store.GetBGGSyncStatus()
	require.NotNil(t, status.PlaysSyncedAt)
	assert.Nil(t, status.CollectionSyncedAt)
	assert.Nil(t, status.LastFullSyncAt)

	assert.Error(t, store.RecordSyncTime(entities.SyncType("bogus"), at))
}

func TestBGGSyncStatus(t *testing.T) {
	store, _ := setupTestStore(t)

	status := store.GetBGGSyncStatus()
	assert.Empty(t, status.Status)
	assert.Empty(t, status.Message)

	require.NoError(t, store.SetBGGSyncStatus(SyncStatusFailed, "bgg: retries exhausted after 10 attempts (last status 503)"))

	status = store.GetBGGSyncStatus()
	assert.Equal(t, SyncStatusFailed, status.Status)
	assert.Contains(t, status.Message, "503")
}
