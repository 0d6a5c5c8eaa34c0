package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bgsync/internal/entities"
	"github.com/mrlokans/bgsync/internal/services"
	"github.com/mrlokans/bgsync/internal/settingsstore"
)

// Each controller depends on the narrowest interface it needs.

// CollectionReader provides read access to the cached collection.
type CollectionReader interface {
	List(ctx context.Context) ([]entities.CollectionItem, error)
	ListByKind(ctx context.Context, kind string) ([]entities.CollectionItem, error)
}

// PlaysReader provides paginated read access to the cached play history.
type PlaysReader interface {
	List(ctx context.Context, limit, offset int) ([]entities.Play, error)
	Count(ctx context.Context) (int64, error)
	TotalQuantity(ctx context.Context) (int64, error)
}

// Syncer runs sync operations inline.
type Syncer interface {
	SyncCollection(ctx context.Context) (*services.SyncResult, error)
	SyncPlays(ctx context.Context) (*services.SyncResult, error)
	SyncPlaysPage(ctx context.Context, page int) (*services.SyncResult, error)
	SyncAll(ctx context.Context) (*services.SyncResult, error)
}

// ProgressReader exposes the persisted state of every sync type.
type ProgressReader interface {
	ListSyncProgress() ([]entities.SyncProgress, error)
}

// BGGSettingsStore reads and edits the sync account and schedule.
type BGGSettingsStore interface {
	GetBGGSyncConfigInfo() settingsstore.BGGSyncConfigInfo
	GetBGGSyncStatus() settingsstore.BGGSyncStatus
	SetBGGUsername(username string) error
	SetBGGSyncEnabled(enabled bool) error
	SetBGGSyncSchedule(schedule string) error
	ClearBGGSyncSettings() error
}

// SyncScheduler controls the periodic full sync.
type SyncScheduler interface {
	Reschedule() error
	RunNow()
	IsRunning() bool
	IsSyncing() bool
	GetNextRunTime() *time.Time
}

// TaskQueue enqueues background tasks and reports their state.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
