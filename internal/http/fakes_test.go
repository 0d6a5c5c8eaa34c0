package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bgsync/internal/entities"
	"github.com/mrlokans/bgsync/internal/services"
)

type fakeCollection struct {
	items []entities.CollectionItem
	err   error
}

func (f *fakeCollection) List(ctx context.Context) ([]entities.CollectionItem, error) {
	return f.items, f.err
}

func (f *fakeCollection) ListByKind(ctx context.Context, kind string) ([]entities.CollectionItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entities.CollectionItem
	for _, item := range f.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakePlays struct {
	plays []entities.Play
	err   error
}

func (f *fakePlays) List(ctx context.Context, limit, offset int) ([]entities.Play, error) {
	if f.err != nil {
		return nil, f.err
	}
	if offset >= len(f.plays) {
		return []entities.Play{}, nil
	}
	end := offset + limit
	if end > len(f.plays) {
		end = len(f.plays)
	}
	return f.plays[offset:end], nil
}

func (f *fakePlays) Count(ctx context.Context) (int64, error) {
	return int64(len(f.plays)), f.err
}

func (f *fakePlays) TotalQuantity(ctx context.Context) (int64, error) {
	var total int64
	for _, p := range f.plays {
		total += int64(p.Quantity)
	}
	return total, f.err
}

type fakeSyncer struct {
	mu    sync.Mutex
	calls []string
	page  int
	err   error
}

func (f *fakeSyncer) record(name string, syncType entities.SyncType) (*services.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return &services.SyncResult{RunID: "run-1", Type: syncType, Username: "alice"}, nil
}

func (f *fakeSyncer) SyncCollection(ctx context.Context) (*services.SyncResult, error) {
	return f.record("collection", entities.SyncTypeCollection)
}

func (f *fakeSyncer) SyncPlays(ctx context.Context) (*services.SyncResult, error) {
	return f.record("plays", entities.SyncTypePlays)
}

func (f *fakeSyncer) SyncPlaysPage(ctx context.Context, page int) (*services.SyncResult, error) {
	f.mu.Lock()
	f.page = page
	f.mu.Unlock()
	return f.record("plays_page", entities.SyncTypePlays)
}

func (f *fakeSyncer) SyncAll(ctx context.Context) (*services.SyncResult, error) {
	return f.record("all", entities.SyncTypeAll)
}

type fakeProgress struct {
	rows []entities.SyncProgress
	err  error
}

func (f *fakeProgress) ListSyncProgress() ([]entities.SyncProgress, error) {
	return f.rows, f.err
}

type fakeScheduler struct {
	running       bool
	syncing       bool
	next          *time.Time
	reschedules   int
	runs          int
	rescheduleErr error
}

func (f *fakeScheduler) Reschedule() error {
	f.reschedules++
	return f.rescheduleErr
}

func (f *fakeScheduler) RunNow()                    { f.runs++ }
func (f *fakeScheduler) IsRunning() bool            { return f.running }
func (f *fakeScheduler) IsSyncing() bool            { return f.syncing }
func (f *fakeScheduler) GetNextRunTime() *time.Time { return f.next }

type fakeTaskQueue struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (f *fakeTaskQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, task)
	return "task-1", nil
}

func (f *fakeTaskQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if f.err != nil {
		return backlite.TaskStatusNotFound, f.err
	}
	status, ok := f.statuses[taskID]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

var errBoom = errors.New("boom")
