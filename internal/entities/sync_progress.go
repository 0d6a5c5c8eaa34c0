package entities

import (
	"time"
)

type SyncType string

const (
	SyncTypeCollection SyncType = "collection"
	SyncTypePlays      SyncType = "plays"
	SyncTypeAll        SyncType = "all"
)

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncProgress is the latest run of one sync type. Processed counts fetched
// pages for plays and sub-fetches for the collection.
type SyncProgress struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	SyncType    SyncType   `gorm:"size:50;uniqueIndex" json:"sync_type"`
	RunID       string     `gorm:"size:36" json:"run_id"`
	Status      SyncStatus `gorm:"size:20" json:"status"`
	Processed   int        `json:"processed"`
	Records     int        `json:"records"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (SyncProgress) TableName() string {
	return "sync_progress"
}
