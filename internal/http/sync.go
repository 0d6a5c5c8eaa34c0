package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/entities"
	"github.com/mrlokans/bgsync/internal/logging"
	"github.com/mrlokans/bgsync/internal/services"
	"github.com/mrlokans/bgsync/internal/settingsstore"
	"github.com/mrlokans/bgsync/internal/tasks"
)

// SyncController triggers syncs and reports their state.
type SyncController struct {
	syncer    Syncer
	progress  ProgressReader
	settings  BGGSettingsStore
	scheduler SyncScheduler
	tasks     TaskQueue
}

func NewSyncController(syncer Syncer, progress ProgressReader, settings BGGSettingsStore, scheduler SyncScheduler, taskQueue TaskQueue) *SyncController {
	return &SyncController{
		syncer:    syncer,
		progress:  progress,
		settings:  settings,
		scheduler: scheduler,
		tasks:     taskQueue,
	}
}

// SchedulerState describes the periodic sync.
type SchedulerState struct {
	Running   bool       `json:"running"`
	Syncing   bool       `json:"syncing"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// SyncStatusResponse is the response for GET /api/sync/status
type SyncStatusResponse struct {
	LoggedIn  bool                        `json:"logged_in"`
	Username  string                      `json:"username,omitempty"`
	Status    settingsstore.BGGSyncStatus `json:"status"`
	Progress  []entities.SyncProgress     `json:"progress"`
	Scheduler *SchedulerState             `json:"scheduler,omitempty"`
}

// GetStatus handles GET /api/sync/status
func (sc *SyncController) GetStatus(c *gin.Context) {
	resp := SyncStatusResponse{Progress: []entities.SyncProgress{}}

	if sc.settings != nil {
		info := sc.settings.GetBGGSyncConfigInfo()
		resp.LoggedIn = info.LoggedIn
		resp.Username = info.Username
		resp.Status = sc.settings.GetBGGSyncStatus()
	}

	if sc.progress != nil {
		progress, err := sc.progress.ListSyncProgress()
		if err != nil {
			respondInternalError(c, err, "list sync progress")
			return
		}
		resp.Progress = progress
	}

	if sc.scheduler != nil {
		resp.Scheduler = &SchedulerState{
			Running:   sc.scheduler.IsRunning(),
			Syncing:   sc.scheduler.IsSyncing(),
			NextRunAt: sc.scheduler.GetNextRunTime(),
		}
	}

	c.IndentedJSON(http.StatusOK, resp)
}

// RunSync handles POST /api/sync/:type for collection, plays and all.
// ?page=N syncs a single page of plays. ?async=true enqueues the sync
// as a background task and returns its ID.
func (sc *SyncController) RunSync(c *gin.Context) {
	syncType := entities.SyncType(c.Param("type"))
	switch syncType {
	case entities.SyncTypeCollection, entities.SyncTypePlays, entities.SyncTypeAll:
	default:
		respondBadRequest(c, "unknown sync type: "+string(syncType))
		return
	}

	page, ok := parseIntQuery(c, "page", 0)
	if !ok {
		return
	}
	if page > 0 && syncType != entities.SyncTypePlays {
		respondBadRequest(c, "page is only supported for plays")
		return
	}

	if c.Query("async") == "true" {
		sc.enqueue(c, syncType, page)
		return
	}

	result, err := sc.run(c.Request.Context(), syncType, page)
	if err != nil {
		respondSyncError(c, err)
		return
	}
	respondSuccess(c, "sync completed", result)
}

func (sc *SyncController) run(ctx context.Context, syncType entities.SyncType, page int) (*services.SyncResult, error) {
	switch {
	case syncType == entities.SyncTypeCollection:
		return sc.syncer.SyncCollection(ctx)
	case syncType == entities.SyncTypePlays && page > 0:
		return sc.syncer.SyncPlaysPage(ctx, page)
	case syncType == entities.SyncTypePlays:
		return sc.syncer.SyncPlays(ctx)
	default:
		return sc.syncer.SyncAll(ctx)
	}
}

func (sc *SyncController) enqueue(c *gin.Context, syncType entities.SyncType, page int) {
	if sc.tasks == nil {
		respondError(c, http.StatusServiceUnavailable, "tasks_disabled", "background tasks are not enabled")
		return
	}
	if sc.settings != nil && !sc.settings.GetBGGSyncConfigInfo().LoggedIn {
		respondSyncError(c, services.ErrNotLoggedIn)
		return
	}

	var task backlite.Task
	switch syncType {
	case entities.SyncTypeCollection:
		task = tasks.SyncCollectionTask{}
	case entities.SyncTypePlays:
		task = tasks.SyncPlaysTask{Page: page}
	default:
		task = tasks.SyncAllTask{}
	}

	id, err := sc.tasks.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue sync task")
		return
	}

	logging.Info().Str("task_id", id).Str("sync", string(syncType)).Msg("Sync task enqueued")
	respondAccepted(c, "sync enqueued", gin.H{
		"task_id": id,
		"type":    syncType,
	})
}

// respondSyncError maps sync failures onto HTTP statuses. Upstream details
// are passed through since they tell the caller whether to retry.
func respondSyncError(c *gin.Context, err error) {
	var (
		exhausted  *bgg.RetryExhaustedError
		unexpected *bgg.UnexpectedStatusError
	)

	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		respondError(c, http.StatusConflict, "not_logged_in", err.Error())
	case errors.Is(err, services.ErrSyncInProgress):
		respondError(c, http.StatusConflict, "sync_in_progress", err.Error())
	case errors.Is(err, bgg.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.As(err, &exhausted):
		c.Header("Retry-After", "60")
		respondError(c, http.StatusServiceUnavailable, "upstream_unavailable", err.Error())
	case errors.As(err, &unexpected), errors.Is(err, bgg.ErrParseFailed):
		respondError(c, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		respondInternalError(c, err, "sync")
	}
}
