package settingsstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/bgsync/internal/entities"
)

// Environment fallbacks for database-editable settings
const (
	EnvBGGUsername     = "BGG_USERNAME"
	EnvBGGSyncEnabled  = "BGG_SYNC_ENABLED"
	EnvBGGSyncSchedule = "BGG_SYNC_SCHEDULE"

	DefaultBGGSyncSchedule = "0 */6 * * *"
)

// Sync status values
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
	SyncStatusRunning = "running"
)

// BGGSyncConfig represents the effective configuration for scheduled sync
type BGGSyncConfig struct {
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// BGGSyncConfigInfo includes source information for each field
type BGGSyncConfigInfo struct {
	Username       string `json:"username"`
	UsernameSource string `json:"username_source"`
	LoggedIn       bool   `json:"logged_in"`

	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Schedule            string     `json:"schedule"`
	ScheduleSource      string     `json:"schedule_source"`
	ScheduleDescription string     `json:"schedule_description"`
	NextRunAt           *time.Time `json:"next_run_at,omitempty"`
}

// BGGSyncStatus is what the last syncs left behind
type BGGSyncStatus struct {
	CollectionSyncedAt *time.Time `json:"collection_synced_at,omitempty"`
	PlaysSyncedAt      *time.Time `json:"plays_synced_at,omitempty"`
	LastFullSyncAt     *time.Time `json:"last_full_sync_at,omitempty"`
	Status             string     `json:"status,omitempty"`
	Message            string     `json:"message,omitempty"`
}

// GetBGGUsername returns the account to sync (database > env > "").
// An empty result means nobody is logged in.
func (s *SettingsStore) GetBGGUsername() string {
	value, _ := s.resolve(entities.SettingKeyBGGUsername, EnvBGGUsername, "")
	return strings.TrimSpace(value)
}

// GetBGGUsernameSource returns the source of the username setting
func (s *SettingsStore) GetBGGUsernameSource() string {
	_, source := s.resolve(entities.SettingKeyBGGUsername, EnvBGGUsername, "")
	return source
}

// SetBGGUsername saves the username to database
func (s *SettingsStore) SetBGGUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username must not be blank")
	}
	return s.repo.SetSetting(entities.SettingKeyBGGUsername, username)
}

// CurrentUsername implements the sync service's identity provider
func (s *SettingsStore) CurrentUsername() string {
	return s.GetBGGUsername()
}

// GetBGGSyncEnabled returns whether scheduled sync is enabled (database > env > default)
func (s *SettingsStore) GetBGGSyncEnabled() bool {
	value, _ := s.resolve(entities.SettingKeyBGGSyncEnabled, EnvBGGSyncEnabled, "false")
	return parseBool(value)
}

// GetBGGSyncEnabledSource returns the source of the enabled setting
func (s *SettingsStore) GetBGGSyncEnabledSource() string {
	_, source := s.resolve(entities.SettingKeyBGGSyncEnabled, EnvBGGSyncEnabled, "false")
	return source
}

// SetBGGSyncEnabled saves the enabled setting to database
func (s *SettingsStore) SetBGGSyncEnabled(enabled bool) error {
	return s.repo.SetSetting(entities.SettingKeyBGGSyncEnabled, strconv.FormatBool(enabled))
}

// GetBGGSyncSchedule returns the cron schedule (database > env > default)
func (s *SettingsStore) GetBGGSyncSchedule() string {
	value, _ := s.resolve(entities.SettingKeyBGGSyncSchedule, EnvBGGSyncSchedule, DefaultBGGSyncSchedule)
	return value
}

// GetBGGSyncScheduleSource returns the source of the schedule setting
func (s *SettingsStore) GetBGGSyncScheduleSource() string {
	_, source := s.resolve(entities.SettingKeyBGGSyncSchedule, EnvBGGSyncSchedule, DefaultBGGSyncSchedule)
	return source
}

// SetBGGSyncSchedule validates and saves the schedule to database
func (s *SettingsStore) SetBGGSyncSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return s.repo.SetSetting(entities.SettingKeyBGGSyncSchedule, schedule)
}

// GetBGGSyncConfig returns the effective configuration
func (s *SettingsStore) GetBGGSyncConfig() BGGSyncConfig {
	return BGGSyncConfig{
		Username: s.GetBGGUsername(),
		Enabled:  s.GetBGGSyncEnabled(),
		Schedule: s.GetBGGSyncSchedule(),
	}
}

// GetBGGSyncConfigInfo returns the configuration with source information
func (s *SettingsStore) GetBGGSyncConfigInfo() BGGSyncConfigInfo {
	username := s.GetBGGUsername()
	schedule := s.GetBGGSyncSchedule()

	info := BGGSyncConfigInfo{
		Username:            username,
		UsernameSource:      s.GetBGGUsernameSource(),
		LoggedIn:            username != "",
		Enabled:             s.GetBGGSyncEnabled(),
		EnabledSource:       s.GetBGGSyncEnabledSource(),
		Schedule:            schedule,
		ScheduleSource:      s.GetBGGSyncScheduleSource(),
		ScheduleDescription: GetCronDescription(schedule),
	}
	if info.Enabled {
		if next, err := GetNextRunTime(schedule); err == nil {
			info.NextRunAt = next
		}
	}
	return info
}

// ClearBGGSyncSettings clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearBGGSyncSettings() error {
	return s.repo.DeleteSetting(
		entities.SettingKeyBGGUsername,
		entities.SettingKeyBGGSyncEnabled,
		entities.SettingKeyBGGSyncSchedule,
	)
}

// GetBGGSyncStatus returns the sync timestamps and the last run outcome
func (s *SettingsStore) GetBGGSyncStatus() BGGSyncStatus {
	status := BGGSyncStatus{
		CollectionSyncedAt: s.getTime(entities.SettingKeyBGGCollectionSyncedAt),
		PlaysSyncedAt:      s.getTime(entities.SettingKeyBGGPlaysSyncedAt),
		LastFullSyncAt:     s.getTime(entities.SettingKeyBGGLastFullSyncAt),
	}
	if value, ok, err := s.repo.GetValue(entities.SettingKeyBGGSyncLastStatus); err == nil && ok {
		status.Status = value
	}
	if value, ok, err := s.repo.GetValue(entities.SettingKeyBGGSyncLastMessage); err == nil && ok {
		status.Message = value
	}
	return status
}

// SetBGGSyncStatus records the outcome of the last run
func (s *SettingsStore) SetBGGSyncStatus(status, message string) error {
	return s.repo.SetSettings(map[string]string{
		entities.SettingKeyBGGSyncLastStatus:  status,
		entities.SettingKeyBGGSyncLastMessage: message,
	})
}

// RecordSyncTime stores when a sync of syncType last succeeded
func (s *SettingsStore) RecordSyncTime(syncType entities.SyncType, at time.Time) error {
	key, err := syncTimeKey(syncType)
	if err != nil {
		return err
	}
	return s.repo.SetSetting(key, at.UTC().Format(time.RFC3339))
}

// GetSyncTime returns when a sync of syncType last succeeded, or nil
func (s *SettingsStore) GetSyncTime(syncType entities.SyncType) *time.Time {
	key, err := syncTimeKey(syncType)
	if err != nil {
		return nil
	}
	return s.getTime(key)
}

func syncTimeKey(syncType entities.SyncType) (string, error) {
	switch syncType {
	case entities.SyncTypeCollection:
		return entities.SettingKeyBGGCollectionSyncedAt, nil
	case entities.SyncTypePlays:
		return entities.SettingKeyBGGPlaysSyncedAt, nil
	case entities.SyncTypeAll:
		return entities.SettingKeyBGGLastFullSyncAt, nil
	default:
		return "", fmt.Errorf("unknown sync type %q", syncType)
	}
}

func (s *SettingsStore) getTime(key string) *time.Time {
	value, ok, err := s.repo.GetValue(key)
	if err != nil || !ok || value == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &ts
}
