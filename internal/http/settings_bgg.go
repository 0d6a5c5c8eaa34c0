package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bgsync/internal/settingsstore"
)

// BGGSettingsController handles the sync account and schedule settings
type BGGSettingsController struct {
	settingsStore BGGSettingsStore
	scheduler     SyncScheduler
}

// NewBGGSettingsController creates a new controller
func NewBGGSettingsController(store BGGSettingsStore, sched SyncScheduler) *BGGSettingsController {
	return &BGGSettingsController{
		settingsStore: store,
		scheduler:     sched,
	}
}

// BGGSettingsResponse is the response for GET /settings/bgg
type BGGSettingsResponse struct {
	Config    settingsstore.BGGSyncConfigInfo `json:"config"`
	Status    settingsstore.BGGSyncStatus     `json:"status"`
	NextRun   *time.Time                      `json:"next_run,omitempty"`
	IsRunning bool                            `json:"is_running"`
	Presets   []SchedulePreset                `json:"presets"`
}

// SchedulePreset is a predefined schedule option
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every hour", Value: "0 * * * *", Description: "Runs at the top of every hour"},
	{Label: "Every 6 hours", Value: "0 */6 * * *", Description: "Runs at midnight, 6am, noon, 6pm"},
	{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
	{Label: "Weekly on Sunday", Value: "0 0 * * 0", Description: "Runs every Sunday at midnight"},
}

// GetSettings returns the current settings and the last sync outcome
func (c *BGGSettingsController) GetSettings(ctx *gin.Context) {
	response := BGGSettingsResponse{
		Config:  c.settingsStore.GetBGGSyncConfigInfo(),
		Status:  c.settingsStore.GetBGGSyncStatus(),
		Presets: schedulePresets,
	}
	if c.scheduler != nil {
		response.NextRun = c.scheduler.GetNextRunTime()
		response.IsRunning = c.scheduler.IsRunning()
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateBGGSettingsRequest is the request body for POST /settings/bgg.
// Omitted fields keep their current value.
type UpdateBGGSettingsRequest struct {
	Username *string `form:"username" json:"username"`
	Enabled  *bool   `form:"enabled" json:"enabled"`
	Schedule string  `form:"schedule" json:"schedule"`
}

// UpdateSettings saves the account and schedule, then reschedules the sync
func (c *BGGSettingsController) UpdateSettings(ctx *gin.Context) {
	var req UpdateBGGSettingsRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondBadRequest(ctx, "invalid request: "+err.Error())
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			respondBadRequest(ctx, "username cannot be empty")
			return
		}
		if err := c.settingsStore.SetBGGUsername(username); err != nil {
			respondInternalError(ctx, err, "save username")
			return
		}
	}

	if req.Schedule != "" {
		if err := settingsstore.ValidateCronSchedule(req.Schedule); err != nil {
			respondBadRequest(ctx, "invalid cron schedule: "+err.Error())
			return
		}
		if err := c.settingsStore.SetBGGSyncSchedule(req.Schedule); err != nil {
			respondInternalError(ctx, err, "save schedule")
			return
		}
	}

	if req.Enabled != nil {
		if err := c.settingsStore.SetBGGSyncEnabled(*req.Enabled); err != nil {
			respondInternalError(ctx, err, "save enabled state")
			return
		}
	}

	if !c.reschedule(ctx) {
		return
	}
	respondSuccess(ctx, "settings saved", c.settingsStore.GetBGGSyncConfigInfo())
}

// ResetSettings clears database overrides, reverting to env/defaults
func (c *BGGSettingsController) ResetSettings(ctx *gin.Context) {
	if err := c.settingsStore.ClearBGGSyncSettings(); err != nil {
		respondInternalError(ctx, err, "reset settings")
		return
	}

	if !c.reschedule(ctx) {
		return
	}
	respondSuccess(ctx, "settings reset", c.settingsStore.GetBGGSyncConfigInfo())
}

// SyncNow starts a scheduled-style full sync without waiting for it
func (c *BGGSettingsController) SyncNow(ctx *gin.Context) {
	if c.scheduler == nil {
		respondError(ctx, http.StatusServiceUnavailable, "scheduler_disabled", "scheduler not available")
		return
	}
	if !c.settingsStore.GetBGGSyncConfigInfo().LoggedIn {
		respondError(ctx, http.StatusConflict, "not_logged_in", "no BoardGameGeek username configured")
		return
	}
	if c.scheduler.IsSyncing() {
		respondError(ctx, http.StatusConflict, "sync_in_progress", "sync already in progress")
		return
	}

	c.scheduler.RunNow()
	respondAccepted(ctx, "sync started", nil)
}

func (c *BGGSettingsController) reschedule(ctx *gin.Context) bool {
	if c.scheduler == nil {
		return true
	}
	if err := c.scheduler.Reschedule(); err != nil {
		respondInternalError(ctx, err, "reschedule sync")
		return false
	}
	return true
}
