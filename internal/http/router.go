package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bgsync/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Routes whose dependencies are missing from cfg are not registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	triggerLimit := func(c *gin.Context) { c.Next() }
	if cfg.SyncTriggersPerMinute > 0 {
		triggerLimit = NewTriggerLimiter(cfg.SyncTriggersPerMinute, 1).Middleware()
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Scheduler, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Cached data
	if cfg.Collection != nil {
		collectionController := NewCollectionController(cfg.Collection)
		router.GET("/api/collection", collectionController.GetCollection)
	}
	if cfg.Plays != nil {
		playsController := NewPlaysController(cfg.Plays)
		router.GET("/api/plays", playsController.GetPlays)
		router.GET("/api/plays/stats", playsController.GetStats)
	}

	// Sync endpoints
	if cfg.Syncer != nil {
		syncController := NewSyncController(cfg.Syncer, cfg.Progress, cfg.Settings, cfg.Scheduler, cfg.TaskClient)
		router.GET("/api/sync/status", syncController.GetStatus)
		router.POST("/api/sync/:type", triggerLimit, syncController.RunSync)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	// Settings routes
	if cfg.Settings != nil {
		settingsController := NewBGGSettingsController(cfg.Settings, cfg.Scheduler)
		router.GET("/settings/bgg", settingsController.GetSettings)
		router.POST("/settings/bgg", settingsController.UpdateSettings)
		router.POST("/settings/bgg/reset", settingsController.ResetSettings)
		router.POST("/settings/bgg/sync-now", triggerLimit, settingsController.SyncNow)
	}

	return router
}

// requestLogger logs each request through the application logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logging.Debug()
		if c.Writer.Status() >= 500 {
			event = logging.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("[HTTP] request handled")
	}
}
