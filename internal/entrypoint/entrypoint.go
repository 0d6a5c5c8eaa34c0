package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bgsync/internal/config"
	"github.com/mrlokans/bgsync/internal/database"
	http_controllers "github.com/mrlokans/bgsync/internal/http"
	"github.com/mrlokans/bgsync/internal/logging"
	"github.com/mrlokans/bgsync/internal/scheduler"
	"github.com/mrlokans/bgsync/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no new sync starts mid-shutdown
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Server shutdown")
	}

	logging.Info().Msg("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.Info().Str("version", version).Msg("Starting bgsync")

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	logging.Debug().
		Str("username", cfg.BGGSync.Username).
		Bool("enabled", cfg.BGGSync.Enabled).
		Str("schedule", cfg.BGGSync.Schedule).
		Msg("Sync defaults from environment")

	components := NewComponents(cfg, db, nil)
	if !components.Settings.GetBGGSyncConfigInfo().LoggedIn {
		logging.Warn().Msg("No BoardGameGeek username configured. Set BGG_USERNAME or POST /settings/bgg to enable syncing.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:   db,
		Version:    version,
		Collection: components.Collection,
		Plays:      components.Plays,
		Syncer:     components.SyncService,
		Progress:   components.Progress,
		Settings:   components.Settings,

		SyncTriggersPerMinute: cfg.HTTP.SyncTriggersPerMinute,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewSyncQueues(components.SyncService)...)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		routerCfg.TaskClient = taskClient
	}

	syncScheduler := scheduler.NewBGGSyncScheduler(components.Settings, components.SyncService)
	if err := syncScheduler.Start(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to start sync scheduler")
	}
	routerCfg.Scheduler = syncScheduler

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
