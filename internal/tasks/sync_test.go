package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bgsync/internal/services"
)

type fakeSyncer struct {
	mu    sync.Mutex
	calls []string
	err   error
	done  chan string
}

func (f *fakeSyncer) record(name string) (*services.SyncResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- name
	}
	if f.err != nil {
		return nil, f.err
	}
	return &services.SyncResult{RunID: "run"}, nil
}

func (f *fakeSyncer) SyncCollection(ctx context.Context) (*services.SyncResult, error) {
	return f.record("collection")
}

func (f *fakeSyncer) SyncPlays(ctx context.Context) (*services.SyncResult, error) {
	return f.record("plays")
}

func (f *fakeSyncer) SyncPlaysPage(ctx context.Context, page int) (*services.SyncResult, error) {
	return f.record("plays_page")
}

func (f *fakeSyncer) SyncAll(ctx context.Context) (*services.SyncResult, error) {
	return f.record("all")
}

func TestSyncTaskConfigs(t *testing.T) {
	tests := []struct {
		task backlite.Task
		name string
	}{
		{SyncCollectionTask{}, "sync_collection"},
		{SyncPlaysTask{}, "sync_plays"},
		{SyncAllTask{}, "sync_all"},
	}

	for _, tt := range tests {
		cfg := tt.task.Config()
		assert.Equal(t, tt.name, cfg.Name)
		assert.Equal(t, 1, cfg.MaxAttempts)
		assert.Positive(t, cfg.Timeout)
		require.NotNil(t, cfg.Retention)
	}
}

func TestSyncPlaysProcessor_Page(t *testing.T) {
	syncer := &fakeSyncer{}

	require.NoError(t, SyncPlaysProcessor(syncer)(context.Background(), SyncPlaysTask{}))
	require.NoError(t, SyncPlaysProcessor(syncer)(context.Background(), SyncPlaysTask{Page: 2}))

	assert.Equal(t, []string{"plays", "plays_page"}, syncer.calls)
}

func TestSyncProcessors_PropagateErrors(t *testing.T) {
	syncer := &fakeSyncer{err: services.ErrNotLoggedIn}
	ctx := context.Background()

	assert.ErrorIs(t, SyncCollectionProcessor(syncer)(ctx, SyncCollectionTask{}), services.ErrNotLoggedIn)
	assert.ErrorIs(t, SyncPlaysProcessor(syncer)(ctx, SyncPlaysTask{}), services.ErrNotLoggedIn)
	assert.ErrorIs(t, SyncAllProcessor(syncer)(ctx, SyncAllTask{}), services.ErrNotLoggedIn)
}

func TestSyncProcessors_NilSyncer(t *testing.T) {
	assert.Error(t, SyncAllProcessor(nil)(context.Background(), SyncAllTask{}))
}

func TestSyncQueues_RunEnqueuedTask(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "bgsync.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	syncer := &fakeSyncer{done: make(chan string, 1), err: errors.New("upstream down")}
	client.Register(NewSyncQueues(syncer)...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err = client.Enqueue(SyncAllTask{})
	require.NoError(t, err)

	select {
	case name := <-syncer.done:
		assert.Equal(t, "all", name)
	case <-time.After(5 * time.Second):
		t.Fatal("sync task was not executed within timeout")
	}
}
