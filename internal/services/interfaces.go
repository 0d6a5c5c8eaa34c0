package services

import (
	"context"
	"time"

	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/entities"
)

// Fetcher retrieves records from the upstream catalog.
// *bgg.Client implements it.
type Fetcher interface {
	FetchCollection(ctx context.Context, username string) ([]bgg.CollectionItem, error)
	FetchPlays(ctx context.Context, username string, page int) (*bgg.PlaysPage, error)
}

// CollectionCache stores the owned-games list.
type CollectionCache interface {
	ReplaceAll(ctx context.Context, items []entities.CollectionItem) error
	Append(ctx context.Context, items []entities.CollectionItem) error
	Clear(ctx context.Context) error
}

// PlaysCache stores the play history.
type PlaysCache interface {
	ReplaceAll(ctx context.Context, plays []entities.Play) error
	Append(ctx context.Context, plays []entities.Play) error
	Clear(ctx context.Context) error
}

// IdentityProvider supplies the account to sync. A blank name means
// nobody is logged in.
type IdentityProvider interface {
	CurrentUsername() string
}

// TimestampRecorder stores when each sync type last succeeded.
type TimestampRecorder interface {
	RecordSyncTime(syncType entities.SyncType, at time.Time) error
}

// ProgressReporter tracks runs so other processes can observe them.
type ProgressReporter interface {
	StartSync(syncType entities.SyncType, runID string) error
	UpdateProgress(syncType entities.SyncType, processed, records int) error
	CompleteSync(syncType entities.SyncType, succeeded bool, errorMsg string) error
	IsSyncRunning(syncType entities.SyncType) (bool, error)
}

// SyncResult summarizes one successful sync run.
type SyncResult struct {
	RunID       string            `json:"run_id"`
	Type        entities.SyncType `json:"type"`
	Username    string            `json:"username"`
	BaseGames   int               `json:"base_games,omitempty"`
	Expansions  int               `json:"expansions,omitempty"`
	Plays       int               `json:"plays,omitempty"`
	Pages       int               `json:"pages,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`

	// TimestampMissed is set when the cache was written but the sync time
	// could not be recorded.
	TimestampMissed bool `json:"timestamp_missed,omitempty"`
}

// CollectionItems is the number of cached collection records.
func (r SyncResult) CollectionItems() int {
	return r.BaseGames + r.Expansions
}
