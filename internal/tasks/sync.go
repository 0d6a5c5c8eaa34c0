package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bgsync/internal/logging"
	"github.com/mrlokans/bgsync/internal/services"
)

// Syncer runs the sync operations a task can request.
// *services.SyncService implements it.
type Syncer interface {
	SyncCollection(ctx context.Context) (*services.SyncResult, error)
	SyncPlays(ctx context.Context) (*services.SyncResult, error)
	SyncPlaysPage(ctx context.Context, page int) (*services.SyncResult, error)
	SyncAll(ctx context.Context) (*services.SyncResult, error)
}

// Upstream retries happen inside each fetch, so a failed task is not
// attempted again by the queue.
func syncQueueConfig(name string, timeout time.Duration) backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        name,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     timeout,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncCollectionTask refreshes the cached collection.
type SyncCollectionTask struct{}

func (t SyncCollectionTask) Config() backlite.QueueConfig {
	return syncQueueConfig("sync_collection", 10*time.Minute)
}

// SyncPlaysTask refreshes the cached play history. A positive Page syncs
// only that page.
type SyncPlaysTask struct {
	Page int `json:"page,omitempty"`
}

func (t SyncPlaysTask) Config() backlite.QueueConfig {
	return syncQueueConfig("sync_plays", 30*time.Minute)
}

// SyncAllTask runs a full sync.
type SyncAllTask struct{}

func (t SyncAllTask) Config() backlite.QueueConfig {
	return syncQueueConfig("sync_all", 40*time.Minute)
}

// SyncCollectionProcessor creates a processor function for SyncCollectionTask.
func SyncCollectionProcessor(syncer Syncer) backlite.QueueProcessor[SyncCollectionTask] {
	return func(ctx context.Context, task SyncCollectionTask) error {
		if syncer == nil {
			return fmt.Errorf("syncer not configured")
		}
		result, err := syncer.SyncCollection(ctx)
		if err != nil {
			return err
		}
		logging.Info().
			Str("run_id", result.RunID).
			Int("items", result.CollectionItems()).
			Msg("[TASK] Collection sync complete")
		return nil
	}
}

// SyncPlaysProcessor creates a processor function for SyncPlaysTask.
func SyncPlaysProcessor(syncer Syncer) backlite.QueueProcessor[SyncPlaysTask] {
	return func(ctx context.Context, task SyncPlaysTask) error {
		if syncer == nil {
			return fmt.Errorf("syncer not configured")
		}

		var (
			result *services.SyncResult
			err    error
		)
		if task.Page > 0 {
			result, err = syncer.SyncPlaysPage(ctx, task.Page)
		} else {
			result, err = syncer.SyncPlays(ctx)
		}
		if err != nil {
			return err
		}
		logging.Info().
			Str("run_id", result.RunID).
			Int("plays", result.Plays).
			Int("pages", result.Pages).
			Msg("[TASK] Plays sync complete")
		return nil
	}
}

// SyncAllProcessor creates a processor function for SyncAllTask.
func SyncAllProcessor(syncer Syncer) backlite.QueueProcessor[SyncAllTask] {
	return func(ctx context.Context, task SyncAllTask) error {
		if syncer == nil {
			return fmt.Errorf("syncer not configured")
		}
		result, err := syncer.SyncAll(ctx)
		if err != nil {
			return err
		}
		logging.Info().
			Str("run_id", result.RunID).
			Int("items", result.CollectionItems()).
			Int("plays", result.Plays).
			Msg("[TASK] Full sync complete")
		return nil
	}
}

// NewSyncQueues creates the backlite queues for every sync task.
func NewSyncQueues(syncer Syncer) []backlite.Queue {
	return []backlite.Queue{
		backlite.NewQueue(SyncCollectionProcessor(syncer)),
		backlite.NewQueue(SyncPlaysProcessor(syncer)),
		backlite.NewQueue(SyncAllProcessor(syncer)),
	}
}
