package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	nethttp "net/http"

	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/database/collection"
	"github.com/mrlokans/bgsync/internal/database/plays"
	"github.com/mrlokans/bgsync/internal/database/sync"
	"github.com/mrlokans/bgsync/internal/http"
	"github.com/mrlokans/bgsync/internal/scheduler"
	"github.com/mrlokans/bgsync/internal/services"
	"github.com/mrlokans/bgsync/internal/settingsstore"
	"github.com/mrlokans/bgsync/internal/tasks"
)

// =============================================================================
// Upstream Client
// =============================================================================

var _ services.Fetcher = (*bgg.Client)(nil)
var _ bgg.Parser = (*bgg.XMLParser)(nil)
var _ bgg.Doer = (*nethttp.Client)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

// Cache implementations
var _ services.CollectionCache = (*collection.Repository)(nil)
var _ services.PlaysCache = (*plays.Repository)(nil)
var _ http.CollectionReader = (*collection.Repository)(nil)
var _ http.PlaysReader = (*plays.Repository)(nil)

// Settings implementations
var _ services.IdentityProvider = (*settingsstore.SettingsStore)(nil)
var _ services.TimestampRecorder = (*settingsstore.SettingsStore)(nil)
var _ scheduler.SyncSettings = (*settingsstore.SettingsStore)(nil)
var _ http.BGGSettingsStore = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Sync Orchestration
// =============================================================================

// ProgressReporter implementations
var _ services.ProgressReporter = (*sync.Repository)(nil)
var _ http.ProgressReader = (*sync.Repository)(nil)

// Syncer implementations
var _ tasks.Syncer = (*services.SyncService)(nil)
var _ scheduler.SyncRunner = (*services.SyncService)(nil)
var _ http.Syncer = (*services.SyncService)(nil)

// Background work
var _ http.SyncScheduler = (*scheduler.BGGSyncScheduler)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
