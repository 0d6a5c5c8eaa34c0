// Package database provides the local cache of upstream data.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── collection/      # Cached owned games, in upstream order
//	├── plays/           # Cached play history with players
//	├── sync/            # Sync run progress
//	└── settings/        # Key-value application settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bgsync.db")
//
//	collectionRepo := collection.NewRepository(db.DB)
//	playsRepo := plays.NewRepository(db.DB)
//
//	items, err := collectionRepo.List(ctx)
//	recent, err := playsRepo.List(ctx, 50, 0)
//
// # Write Semantics
//
// Cache writes run in a single transaction per call. ReplaceAll swaps the
// whole table, Append continues after the highest stored position, and a
// failed write leaves the previous contents in place.
//
// # Interface Implementations
//
//   - collection.Repository: implements services.CollectionCache and http.CollectionReader
//   - plays.Repository: implements services.PlaysCache and http.PlaysReader
//   - sync.Repository: implements services.ProgressReporter and http.ProgressReader
//
// # Adding a New Domain
//
//  1. Create a new sub-package under internal/database/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register its models in Migrate
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
