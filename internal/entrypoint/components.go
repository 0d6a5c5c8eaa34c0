package entrypoint

import (
	"github.com/mrlokans/bgsync/internal/bgg"
	"github.com/mrlokans/bgsync/internal/config"
	"github.com/mrlokans/bgsync/internal/database"
	"github.com/mrlokans/bgsync/internal/database/collection"
	"github.com/mrlokans/bgsync/internal/database/plays"
	"github.com/mrlokans/bgsync/internal/database/settings"
	syncrepo "github.com/mrlokans/bgsync/internal/database/sync"
	"github.com/mrlokans/bgsync/internal/services"
	"github.com/mrlokans/bgsync/internal/settingsstore"
)

// Components are the sync building blocks shared by the server and the CLI.
type Components struct {
	Collection  *collection.Repository
	Plays       *plays.Repository
	Settings    *settingsstore.SettingsStore
	Progress    *syncrepo.Repository
	Client      *bgg.Client
	SyncService *services.SyncService
}

// NewComponents wires the cache repositories, the upstream client and the
// sync service. A nil identity resolves the account from settings.
func NewComponents(cfg *config.Config, db *database.Database, identity services.IdentityProvider) *Components {
	c := &Components{
		Collection: collection.NewRepository(db.DB),
		Plays:      plays.NewRepository(db.DB),
		Settings:   settingsstore.New(settings.NewRepository(db.DB)),
		Progress:   syncrepo.NewRepository(db.DB),
		Client:     NewBGGClient(cfg.BGG),
	}
	if identity == nil {
		identity = c.Settings
	}

	c.SyncService = services.NewSyncService(services.SyncServiceConfig{
		Fetcher:    c.Client,
		Collection: c.Collection,
		Plays:      c.Plays,
		Identity:   identity,
		Timestamps: c.Settings,
		Progress:   c.Progress,
	})
	return c
}

// NewBGGClient creates the upstream client from configuration
func NewBGGClient(cfg config.BGG) *bgg.Client {
	return bgg.NewClient(bgg.Options{
		BaseURL:           cfg.BaseURL,
		UserAgent:         cfg.UserAgent,
		Token:             cfg.APIToken,
		ConnectTimeout:    cfg.ConnectTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
}
