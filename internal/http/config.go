package http

import (
	"github.com/mrlokans/bgsync/internal/database"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	Database *database.Database
	Version  string

	// Cached data
	Collection CollectionReader
	Plays      PlaysReader

	// Sync operations
	Syncer   Syncer
	Progress ProgressReader

	// Account and schedule settings
	Settings  BGGSettingsStore
	Scheduler SyncScheduler

	// Task queue client (optional)
	TaskClient TaskQueue

	// SyncTriggersPerMinute throttles sync triggers per client; 0 disables it
	SyncTriggersPerMinute int
}
