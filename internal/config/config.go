package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		BGG
		BGGSync
		Tasks
		Logging
	}

	HTTP struct {
		Port                  int32
		Host                  string
		SyncTriggersPerMinute int // 0 disables throttling of sync triggers
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	BGG struct {
		BaseURL           string
		APIToken          string // Sent as a bearer token when set
		UserAgent         string
		ConnectTimeout    time.Duration
		ReadTimeout       time.Duration
		RequestsPerSecond float64 // 0 disables client-side throttling
	}
	BGGSync struct {
		Username string
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Logging struct {
		Level  string
		Format string // "console" or "json"
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("sync_triggers_per_minute", 6)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Upstream client defaults
	v.SetDefault("bgg_base_url", DefaultBGGBaseURL)
	v.SetDefault("bgg_api_token", "")
	v.SetDefault("bgg_user_agent", "")
	v.SetDefault("bgg_connect_timeout", "10s")
	v.SetDefault("bgg_read_timeout", "30s")
	v.SetDefault("bgg_requests_per_second", 0.5)

	// Scheduled sync defaults
	v.SetDefault("bgg_username", "")
	v.SetDefault("bgg_sync_enabled", false)
	v.SetDefault("bgg_sync_schedule", DefaultBGGSyncSchedule)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),

			SyncTriggersPerMinute: v.GetInt("SYNC_TRIGGERS_PER_MINUTE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		BGG: BGG{
			BaseURL:           v.GetString("BGG_BASE_URL"),
			APIToken:          v.GetString("BGG_API_TOKEN"),
			UserAgent:         v.GetString("BGG_USER_AGENT"),
			ConnectTimeout:    v.GetDuration("BGG_CONNECT_TIMEOUT"),
			ReadTimeout:       v.GetDuration("BGG_READ_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("BGG_REQUESTS_PER_SECOND"),
		},
		BGGSync: BGGSync{
			Username: v.GetString("BGG_USERNAME"),
			Enabled:  v.GetBool("BGG_SYNC_ENABLED"),
			Schedule: v.GetString("BGG_SYNC_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// Validate reports settings that would make the service misbehave
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.HTTP.Port)
	}
	if c.HTTP.SyncTriggersPerMinute < 0 {
		return fmt.Errorf("SYNC_TRIGGERS_PER_MINUTE must not be negative")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	if c.BGG.RequestsPerSecond < 0 {
		return fmt.Errorf("BGG_REQUESTS_PER_SECOND must not be negative")
	}
	if c.BGG.ConnectTimeout < 0 || c.BGG.ReadTimeout < 0 {
		return fmt.Errorf("BGG timeouts must not be negative")
	}
	if c.BGGSync.Schedule != "" {
		if _, err := cron.ParseStandard(c.BGGSync.Schedule); err != nil {
			return fmt.Errorf("invalid BGG_SYNC_SCHEDULE %q: %w", c.BGGSync.Schedule, err)
		}
	}
	if c.Tasks.Enabled && c.Tasks.Workers < 1 {
		return fmt.Errorf("TASK_WORKERS must be at least 1 when tasks are enabled")
	}
	return nil
}
