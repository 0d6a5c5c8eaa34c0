package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bgsync/internal/entities"
	"github.com/mrlokans/bgsync/internal/logging"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the SQLite cache at dbPath and migrates its schema.
// Foreign keys are enabled so deleting a play removes its players.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logging.Info().Str("path", dbPath).Msg("Database initialized")

	return &Database{DB: db}, nil
}

// Migrate creates or updates every cache table
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.CollectionItem{},
		&entities.Play{},
		&entities.PlayPlayer{},
		&entities.Setting{},
		&entities.SyncProgress{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
