package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/entities"
	"github.com/mrlokans/bgsync/internal/logging"
)

var (
	// ErrNotLoggedIn is returned when no account is configured; nothing is fetched.
	ErrNotLoggedIn = errors.New("not logged in: no BoardGameGeek username configured")

	// ErrSyncInProgress is returned when a sync of the same type is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// SyncService mirrors the upstream collection and play history into the
// local cache. A failed fetch leaves the cache and the sync timestamp of
// that operation untouched. The sync time is recorded after the cache write
// commits; failing to record it does not fail the operation, it only sets
// SyncResult.TimestampMissed.
type SyncService struct {
	fetcher    Fetcher
	collection CollectionCache
	plays      PlaysCache
	identity   IdentityProvider
	timestamps TimestampRecorder
	progress   ProgressReporter
	now        func() time.Time

	mu      sync.Mutex
	running map[entities.SyncType]bool
}

// SyncServiceConfig holds the collaborators of a SyncService.
// Progress is optional.
type SyncServiceConfig struct {
	Fetcher    Fetcher
	Collection CollectionCache
	Plays      PlaysCache
	Identity   IdentityProvider
	Timestamps TimestampRecorder
	Progress   ProgressReporter
}

// NewSyncService creates a new SyncService.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	return &SyncService{
		fetcher:    cfg.Fetcher,
		collection: cfg.Collection,
		plays:      cfg.Plays,
		identity:   cfg.Identity,
		timestamps: cfg.Timestamps,
		progress:   cfg.Progress,
		now:        time.Now,
		running:    make(map[entities.SyncType]bool),
	}
}

// IsRunning reports whether this service is currently running syncType.
func (s *SyncService) IsRunning(syncType entities.SyncType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[syncType]
}

// SyncCollection replaces the cached collection with a fresh copy.
func (s *SyncService) SyncCollection(ctx context.Context) (*SyncResult, error) {
	run, err := s.begin(entities.SyncTypeCollection)
	if err != nil {
		return nil, err
	}

	result, err := s.syncCollection(ctx, run)
	run.finish(err)
	if err != nil {
		return nil, fmt.Errorf("sync collection: %w", err)
	}
	return result, nil
}

func (s *SyncService) syncCollection(ctx context.Context, run *syncRun) (*SyncResult, error) {
	items, err := s.fetcher.FetchCollection(ctx, run.username)
	if err != nil {
		return nil, err
	}
	baseGames, expansions := countKinds(items)
	run.report(2, len(items))

	if err := s.collection.ReplaceAll(ctx, collectionToEntities(items)); err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}

	result := run.result()
	s.recordSyncTime(run, result)
	result.BaseGames = baseGames
	result.Expansions = expansions
	run.log.Info().
		Int("base_games", baseGames).
		Int("expansions", expansions).
		Msg("Collection synced")
	return result, nil
}

// SyncPlaysPage fetches a single page of play history. Page 1 replaces the
// cached history, later pages are appended to it. Only page 1 records the
// plays sync time.
func (s *SyncService) SyncPlaysPage(ctx context.Context, page int) (*SyncResult, error) {
	run, err := s.begin(entities.SyncTypePlays)
	if err != nil {
		return nil, err
	}

	result, err := s.syncPlaysPage(ctx, run, page)
	run.finish(err)
	if err != nil {
		return nil, fmt.Errorf("sync plays page %d: %w", page, err)
	}
	return result, nil
}

func (s *SyncService) syncPlaysPage(ctx context.Context, run *syncRun, page int) (*SyncResult, error) {
	fetched, err := s.fetcher.FetchPlays(ctx, run.username, page)
	if err != nil {
		return nil, err
	}
	run.report(1, len(fetched.Plays))

	records := playsToEntities(fetched.Plays)
	if page == 1 {
		err = s.plays.ReplaceAll(ctx, records)
	} else {
		err = s.plays.Append(ctx, records)
	}
	if err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}

	result := run.result()
	if page == 1 {
		s.recordSyncTime(run, result)
	}
	result.Plays = len(fetched.Plays)
	result.Pages = 1
	return result, nil
}

// SyncPlays fetches every page of play history and then replaces the cache
// in one write, so a failure on any page keeps the previous history.
func (s *SyncService) SyncPlays(ctx context.Context) (*SyncResult, error) {
	run, err := s.begin(entities.SyncTypePlays)
	if err != nil {
		return nil, err
	}

	result, err := s.syncPlays(ctx, run)
	run.finish(err)
	if err != nil {
		return nil, fmt.Errorf("sync plays: %w", err)
	}
	return result, nil
}

func (s *SyncService) syncPlays(ctx context.Context, run *syncRun) (*SyncResult, error) {
	var all []bgg.Play
	pages := 0
	for page := 1; ; page++ {
		fetched, err := s.fetcher.FetchPlays(ctx, run.username, page)
		if err != nil {
			return nil, err
		}
		pages++
		all = append(all, fetched.Plays...)
		run.report(pages, len(all))
		run.log.Debug().
			Int("page", page).
			Int("total", fetched.Meta.TotalCount).
			Int("fetched", len(all)).
			Msg("Plays page fetched")

		if !fetched.Meta.HasMorePages() || len(fetched.Plays) == 0 {
			break
		}
	}

	if err := s.plays.ReplaceAll(ctx, playsToEntities(all)); err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}

	result := run.result()
	s.recordSyncTime(run, result)
	result.Plays = len(all)
	result.Pages = pages
	run.log.Info().Int("plays", len(all)).Int("pages", pages).Msg("Plays synced")
	return result, nil
}

// SyncAll syncs the collection and, only if that succeeds, the plays.
// The full sync time is recorded only when both succeed.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	run, err := s.begin(entities.SyncTypeAll)
	if err != nil {
		return nil, err
	}

	result, err := s.syncAll(ctx, run)
	run.finish(err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SyncService) syncAll(ctx context.Context, run *syncRun) (*SyncResult, error) {
	collection, err := s.SyncCollection(ctx)
	if err != nil {
		return nil, err
	}
	run.report(1, collection.CollectionItems())

	plays, err := s.SyncPlays(ctx)
	if err != nil {
		return nil, err
	}
	run.report(2, collection.CollectionItems()+plays.Plays)

	result := run.result()
	s.recordSyncTime(run, result)
	result.TimestampMissed = result.TimestampMissed || collection.TimestampMissed || plays.TimestampMissed
	result.BaseGames = collection.BaseGames
	result.Expansions = collection.Expansions
	result.Plays = plays.Plays
	result.Pages = plays.Pages
	return result, nil
}

// recordSyncTime stores the sync time of run's type. The cache is already
// written at this point, so a failure is logged and flagged, not returned.
func (s *SyncService) recordSyncTime(run *syncRun, result *SyncResult) {
	if err := s.timestamps.RecordSyncTime(run.syncType, s.now()); err != nil {
		run.log.Warn().Err(err).Msg("Failed to record sync time")
		result.TimestampMissed = true
	}
}

// syncRun is the bookkeeping of one running operation
type syncRun struct {
	service   *SyncService
	syncType  entities.SyncType
	id        string
	username  string
	startedAt time.Time
	log       zerolog.Logger
}

// begin resolves the identity and claims syncType for this run
func (s *SyncService) begin(syncType entities.SyncType) (*syncRun, error) {
	username := strings.TrimSpace(s.identity.CurrentUsername())
	if username == "" {
		return nil, ErrNotLoggedIn
	}

	s.mu.Lock()
	if s.running[syncType] {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", syncType, ErrSyncInProgress)
	}
	if s.progress != nil {
		if running, err := s.progress.IsSyncRunning(syncType); err == nil && running {
			s.mu.Unlock()
			return nil, fmt.Errorf("%s: %w", syncType, ErrSyncInProgress)
		}
	}
	s.running[syncType] = true
	s.mu.Unlock()

	run := &syncRun{
		service:   s,
		syncType:  syncType,
		id:        uuid.NewString(),
		username:  username,
		startedAt: s.now(),
	}
	run.log = logging.With().
		Str("run_id", run.id).
		Str("sync", string(syncType)).
		Str("username", username).
		Logger()

	if s.progress != nil {
		if err := s.progress.StartSync(syncType, run.id); err != nil {
			run.log.Warn().Err(err).Msg("Failed to record sync start")
		}
	}
	run.log.Info().Msg("Sync started")
	return run, nil
}

func (r *syncRun) report(processed, records int) {
	if r.service.progress == nil {
		return
	}
	if err := r.service.progress.UpdateProgress(r.syncType, processed, records); err != nil {
		r.log.Warn().Err(err).Msg("Failed to record sync progress")
	}
}

func (r *syncRun) finish(err error) {
	s := r.service
	s.mu.Lock()
	delete(s.running, r.syncType)
	s.mu.Unlock()

	if err != nil {
		r.log.Warn().Err(err).Dur("elapsed", s.now().Sub(r.startedAt)).Msg("Sync failed")
	} else {
		r.log.Info().Dur("elapsed", s.now().Sub(r.startedAt)).Msg("Sync completed")
	}

	if s.progress == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if perr := s.progress.CompleteSync(r.syncType, err == nil, msg); perr != nil {
		r.log.Warn().Err(perr).Msg("Failed to record sync completion")
	}
}

func (r *syncRun) result() *SyncResult {
	return &SyncResult{
		RunID:       r.id,
		Type:        r.syncType,
		Username:    r.username,
		StartedAt:   r.startedAt,
		CompletedAt: r.service.now(),
	}
}

// IsRetryable reports whether err came from a transient upstream condition,
// so a later run may succeed without any change on our side.
func IsRetryable(err error) bool {
	var exhausted *bgg.RetryExhaustedError
	return errors.As(err, &exhausted)
}
