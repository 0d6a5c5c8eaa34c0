package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyBGGUsername = "bgg_username"

	// Scheduled sync settings
	SettingKeyBGGSyncEnabled     = "bgg_sync_enabled"
	SettingKeyBGGSyncSchedule    = "bgg_sync_schedule"
	SettingKeyBGGSyncLastStatus  = "bgg_sync_last_status"
	SettingKeyBGGSyncLastMessage = "bgg_sync_last_message"

	// Sync timestamps, RFC 3339
	SettingKeyBGGCollectionSyncedAt = "bgg_collection_synced_at"
	SettingKeyBGGPlaysSyncedAt      = "bgg_plays_synced_at"
	SettingKeyBGGLastFullSyncAt     = "bgg_last_full_sync_at"
)
