package services

import (
	"context"
	"sync"
	"time"

	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/entities"
)

type fakeFetcher struct {
	mu              sync.Mutex
	collection      []bgg.CollectionItem
	collectionErr   error
	pages           map[int]*bgg.PlaysPage
	pageErr         map[int]error
	collectionCalls int
	playsCalls      []int
	block           chan struct{}
}

func (f *fakeFetcher) FetchCollection(ctx context.Context, username string) ([]bgg.CollectionItem, error) {
	f.mu.Lock()
	f.collectionCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.collectionErr != nil {
		return nil, f.collectionErr
	}
	return f.collection, nil
}

func (f *fakeFetcher) FetchPlays(ctx context.Context, username string, page int) (*bgg.PlaysPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playsCalls = append(f.playsCalls, page)
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return &bgg.PlaysPage{Meta: bgg.PageMeta{PageNumber: page}}, nil
}

type memoryCollection struct {
	items    []entities.CollectionItem
	replaces int
	err      error
}

func (m *memoryCollection) ReplaceAll(ctx context.Context, items []entities.CollectionItem) error {
	if m.err != nil {
		return m.err
	}
	m.replaces++
	m.items = append([]entities.CollectionItem(nil), items...)
	return nil
}

func (m *memoryCollection) Append(ctx context.Context, items []entities.CollectionItem) error {
	m.items = append(m.items, items...)
	return nil
}

func (m *memoryCollection) Clear(ctx context.Context) error {
	m.items = nil
	return nil
}

type memoryPlays struct {
	plays    []entities.Play
	replaces int
	appends  int
}

func (m *memoryPlays) ReplaceAll(ctx context.Context, plays []entities.Play) error {
	m.replaces++
	m.plays = append([]entities.Play(nil), plays...)
	return nil
}

func (m *memoryPlays) Append(ctx context.Context, plays []entities.Play) error {
	m.appends++
	m.plays = append(m.plays, plays...)
	return nil
}

func (m *memoryPlays) Clear(ctx context.Context) error {
	m.plays = nil
	return nil
}

type staticIdentity string

func (s staticIdentity) CurrentUsername() string {
	return string(s)
}

type memoryTimestamps struct {
	mu    sync.Mutex
	times map[entities.SyncType]time.Time
	err   error
}

func newMemoryTimestamps() *memoryTimestamps {
	return &memoryTimestamps{times: make(map[entities.SyncType]time.Time)}
}

func (m *memoryTimestamps) RecordSyncTime(syncType entities.SyncType, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.times[syncType] = at
	return nil
}

func (m *memoryTimestamps) has(syncType entities.SyncType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.times[syncType]
	return ok
}

type recordingProgress struct {
	mu        sync.Mutex
	started   []entities.SyncType
	completed map[entities.SyncType]bool
	messages  map[entities.SyncType]string
}

func newRecordingProgress() *recordingProgress {
	return &recordingProgress{
		completed: make(map[entities.SyncType]bool),
		messages:  make(map[entities.SyncType]string),
	}
}

func (r *recordingProgress) StartSync(syncType entities.SyncType, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, syncType)
	return nil
}

func (r *recordingProgress) UpdateProgress(syncType entities.SyncType, processed, records int) error {
	return nil
}

func (r *recordingProgress) CompleteSync(syncType entities.SyncType, succeeded bool, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed[syncType] = succeeded
	r.messages[syncType] = errorMsg
	return nil
}

func (r *recordingProgress) IsSyncRunning(syncType entities.SyncType) (bool, error) {
	return false, nil
}
